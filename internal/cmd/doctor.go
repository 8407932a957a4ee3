package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studydash/internal/errors"
	"github.com/felixgeelhaar/studydash/internal/health"
	"github.com/felixgeelhaar/studydash/internal/ux"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the backend, the stored session and file permissions",
	Long: `Run preflight checks and report what would stop other commands from working:
whether the backend answers its health endpoint, whether the stored session
can be read with the configured passphrase, and whether the config and
session files are private to you.

Exits non-zero when any check is unhealthy.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

type doctorView struct {
	Overall health.Status   `json:"overall" yaml:"overall"`
	Checks  []health.Report `json:"checks" yaml:"checks"`
}

func (v doctorView) RenderText(noColor bool) string {
	p := ux.NewPalette(noColor)
	mark := func(s health.Status) string {
		switch s {
		case health.StatusHealthy:
			return p.Success.Render("✓")
		case health.StatusDegraded:
			return p.Warning.Render("!")
		default:
			return p.Danger.Render("✗")
		}
	}

	var b strings.Builder
	for _, r := range v.Checks {
		fmt.Fprintf(&b, "%s %-14s %s\n", mark(r.Result.Status), r.Name, r.Result.Message)
		for _, key := range []string{"url", "path", "database", "ai_service", "error", "fix"} {
			if value, ok := r.Result.Details[key]; ok {
				b.WriteString(p.Muted.Render(fmt.Sprintf("    %s: %s", key, value)))
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n" + p.Label.Render("Overall:") + " " + string(v.Overall))
	return b.String()
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	manager := health.NewManager(
		health.NewBackendChecker(a.client, a.cfg.API.URL),
		health.NewStoreChecker(a.store),
		health.NewFileModeChecker("config-file", a.configPath),
		health.NewFileModeChecker("session-file", a.cfg.Session.Path),
	)

	reports := manager.Check(ctxOf(cmd))
	view := doctorView{Overall: health.Overall(reports), Checks: reports}
	if err := a.print(view); err != nil {
		return err
	}

	if view.Overall == health.StatusUnhealthy {
		return errors.New(errors.ErrCodeAPITransport, "one or more checks failed").
			WithSuggestion("Fix the items marked ✗ above")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
