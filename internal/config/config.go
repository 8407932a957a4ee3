// Package config handles studydash configuration using Viper.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/felixgeelhaar/studydash/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. STUDYDASH_API_URL
const EnvPrefix = "STUDYDASH"

// Config holds the application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Documents DocumentsConfig `mapstructure:"documents" yaml:"documents"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
}

// APIConfig locates the backend.
type APIConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SessionConfig controls where the session is persisted.
type SessionConfig struct {
	Path       string `mapstructure:"path" yaml:"path"`
	Passphrase string `mapstructure:"passphrase" yaml:"passphrase,omitempty"`
}

// DocumentsConfig controls document status polling.
type DocumentsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// OutputConfig controls command output.
type OutputConfig struct {
	Format  string `mapstructure:"format" yaml:"format"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
}

// Dir returns ~/.studydash
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfigLoad, "failed to get home directory", err)
	}
	return filepath.Join(home, ".studydash"), nil
}

// DefaultPath returns ~/.studydash/config.yaml
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from defaults, the config file, a .env file in the
// working directory, and STUDYDASH_* environment variables, in rising priority.
// A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeConfigLoad, "failed to read .env file", err)
	}

	v := viper.New()
	if err := setDefaults(v); err != nil {
		return nil, err
	}

	if configPath == "" {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigLoad, "failed to read config "+configPath, err).
				WithSuggestion("Fix the YAML or run 'studydash config view' after removing the file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigLoad, "failed to decode config", err)
	}

	cfg.Session.Path = expandHome(cfg.Session.Path)
	return &cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	v.SetDefault("api.url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("session.path", filepath.Join(dir, "session.json"))
	v.SetDefault("session.passphrase", "")
	v.SetDefault("documents.poll_interval", 5*time.Second)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.no_color", false)
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
