package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studydash",
	Short: "Terminal client for the study dashboard",
	Long: `studydash is a terminal client for the study dashboard backend.
It keeps you signed in between runs, lists your documents and quizzes,
lets you take a quiz against the clock, and shows your results and progress.

Summaries, quiz generation and grading happen on the backend; point
studydash at it with --api-url, STUDYDASH_API_URL or 'studydash config set api.url'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every subcommand
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "backend base URL (overrides api.url)")
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.studydash/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides logging.level)")
	rootCmd.PersistentFlags().String("format", "", "output format: text, json, yaml (overrides output.format)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}
