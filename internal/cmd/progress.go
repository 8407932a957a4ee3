package cmd

import (
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your study progress",
	Long: `Show document and quiz totals, your average score, the current study streak and recent activity.

With --detailed the full history is shown instead: daily statistics, mastery per topic,
earned achievements and your best streak.`,
	Args: cobra.NoArgs,
	RunE: runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}

	if detailed, _ := cmd.Flags().GetBool("detailed"); detailed {
		progress, err := a.client.GetProgressDetailed(ctxOf(cmd))
		if err != nil {
			return err
		}
		return a.print(detailedProgressView{Progress: progress})
	}

	overview, err := a.client.GetProgressOverview(ctxOf(cmd))
	if err != nil {
		return err
	}
	return a.print(progressView{Overview: overview})
}

func init() {
	progressCmd.Flags().Bool("detailed", false, "show daily, topic and achievement history")
	rootCmd.AddCommand(progressCmd)
}
