package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studydash/internal/ux"
	"github.com/felixgeelhaar/studydash/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

type versionView struct {
	Info    version.Info
	Verbose bool
}

func (v versionView) Data() interface{} { return v.Info }

func (v versionView) RenderText(noColor bool) string {
	if !v.Verbose {
		return "studydash " + v.Info.Short()
	}
	return ux.KeyValues([][2]string{
		{"Version", v.Info.Version},
		{"Commit", v.Info.Commit},
		{"Built", v.Info.Date},
		{"Go", v.Info.GoVersion},
		{"Platform", v.Info.Platform},
	}, noColor)
}

func runVersion(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	format := cc.Format
	if format == "" {
		format = "text"
	}
	f, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout(), NoColor: cc.NoColor})
	if err != nil {
		return err
	}
	return f.Format(versionView{Info: version.GetInfo(), Verbose: verbose})
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "show detailed version information")

	rootCmd.AddCommand(versionCmd)
}
