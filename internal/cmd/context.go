package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/config"
	"github.com/felixgeelhaar/studydash/internal/errors"
	"github.com/felixgeelhaar/studydash/internal/log"
	"github.com/felixgeelhaar/studydash/internal/session"
	"github.com/felixgeelhaar/studydash/internal/storage"
	"github.com/felixgeelhaar/studydash/internal/ux"
)

// CommandContext holds the global command-line flags
type CommandContext struct {
	APIURL     string
	ConfigPath string
	LogLevel   string
	Format     string
	NoColor    bool
}

// NewCommandContext extracts the global flags from cmd
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	apiURL, err := cmd.Flags().GetString("api-url")
	if err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		APIURL:     apiURL,
		ConfigPath: configPath,
		LogLevel:   logLevel,
		Format:     format,
		NoColor:    noColor,
	}, nil
}

// app is everything a command needs, built once per invocation from flags and config
type app struct {
	cfg        *config.Config
	configPath string
	logger     *log.Logger
	client     *api.Client
	store      storage.Store
	session    *session.Manager

	out     io.Writer
	in      io.Reader
	format  string
	noColor bool
}

// newApp loads configuration, applies flag overrides and wires the client,
// session store and session manager. Flags beat environment beat file.
func newApp(cmd *cobra.Command) (*app, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cc.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cc.APIURL != "" {
		cfg.API.URL = cc.APIURL
	}
	if cc.LogLevel != "" {
		cfg.Logging.Level = cc.LogLevel
	}
	if cc.Format != "" {
		cfg.Output.Format = cc.Format
	}
	if cc.NoColor {
		cfg.Output.NoColor = true
	}

	logger := log.New(log.Config{
		Level:       log.ParseLevel(cfg.Logging.Level),
		Format:      log.ParseFormat(cfg.Logging.Format),
		Output:      cmd.ErrOrStderr(),
		ServiceName: "studydash",
	})
	log.SetDefaultLogger(logger)

	client := api.NewClient(cfg.API.URL, api.WithTimeout(cfg.API.Timeout), api.WithLogger(logger))
	store := storage.NewFileStore(cfg.Session.Path, cfg.Session.Passphrase)
	mgr := session.NewManager(client, store, session.WithLogger(logger))
	client.SetTokenSource(mgr.Token)

	configPath := cc.ConfigPath
	if configPath == "" {
		if configPath, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}

	return &app{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
		client:     client,
		store:      store,
		session:    mgr,
		out:        cmd.OutOrStdout(),
		in:         cmd.InOrStdin(),
		format:     cfg.Output.Format,
		noColor:    cfg.Output.NoColor,
	}, nil
}

// setup builds the app, restores the session and applies the route guard.
// Protected routes without a user fail with AUTH-002. The caller handles
// DecisionRedirectHome for guest-only routes.
func setup(cmd *cobra.Command, route session.Route) (*app, session.Decision, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, session.DecisionLoading, err
	}

	a.session.Initialize(ctxOf(cmd))

	decision := a.session.Guard(route)
	switch decision {
	case session.DecisionRedirectLogin:
		return nil, decision, errors.NewNoSessionError()
	case session.DecisionLoading:
		return nil, decision, errors.New(errors.ErrCodeAuthNotReady, "session is still being restored")
	}
	return a, decision, nil
}

// protected is setup for commands that need a logged-in user
func protected(cmd *cobra.Command) (*app, error) {
	a, _, err := setup(cmd, session.RouteProtected)
	return a, err
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// print writes data in the configured output format
func (a *app) print(data interface{}) error {
	f, err := ux.NewFormatter(a.format, &ux.FormatterOptions{Writer: a.out, NoColor: a.noColor})
	if err != nil {
		return errors.Wrap(errors.ErrCodeUsageInvalidFormat, "invalid output format", err).
			WithSuggestion("Use --format text, json or yaml")
	}
	return f.Format(data)
}
