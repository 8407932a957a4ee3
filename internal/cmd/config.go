package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studydash/internal/config"
	"github.com/felixgeelhaar/studydash/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change studydash settings",
	Long: `View and change settings stored in ~/.studydash/config.yaml.

Every key can also be set through the environment, e.g. STUDYDASH_API_URL
for api.url, or through a .env file in the working directory.`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigView,
}

var configGetCmd = &cobra.Command{
	Use:     "get <key>",
	Short:   "Print one setting",
	Example: "  studydash config get api.url",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the config file",
	Example: `  studydash config set api.url https://study.example.com
  studydash config set documents.poll_interval 10s`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

const masked = "********"

// configView lists every key with its effective value
type configView struct {
	Path   string
	Values [][2]string
}

func newConfigView(cfg *config.Config, path string) (configView, error) {
	v := configView{Path: path}
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			return configView{}, err
		}
		if key == "session.passphrase" && value != "" {
			value = masked
		}
		v.Values = append(v.Values, [2]string{key, value})
	}
	return v, nil
}

func (v configView) Data() interface{} {
	m := make(map[string]string, len(v.Values))
	for _, kv := range v.Values {
		m[kv[0]] = kv[1]
	}
	return m
}

func (v configView) RenderText(noColor bool) string {
	p := ux.NewPalette(noColor)
	return p.Muted.Render("# "+v.Path) + "\n" + ux.KeyValues(v.Values, noColor)
}

func runConfigView(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	view, err := newConfigView(a.cfg, a.configPath)
	if err != nil {
		return err
	}
	return a.print(view)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	value, err := a.cfg.Get(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, value)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := config.Set(a.configPath, args[0], args[1]); err != nil {
		return err
	}
	return a.print(messageView{Message: fmt.Sprintf("Set %s in %s", args[0], a.configPath)})
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, a.configPath)
	return err
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
