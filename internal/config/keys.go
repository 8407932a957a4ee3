package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/studydash/internal/errors"
)

type keyKind int

const (
	kindString keyKind = iota
	kindDuration
	kindBool
	kindChoice
)

type keyDef struct {
	kind    keyKind
	choices []string
	get     func(*Config) string
}

var keys = map[string]keyDef{
	"api.url":                 {kind: kindString, get: func(c *Config) string { return c.API.URL }},
	"api.timeout":             {kind: kindDuration, get: func(c *Config) string { return c.API.Timeout.String() }},
	"session.path":            {kind: kindString, get: func(c *Config) string { return c.Session.Path }},
	"session.passphrase":      {kind: kindString, get: func(c *Config) string { return c.Session.Passphrase }},
	"documents.poll_interval": {kind: kindDuration, get: func(c *Config) string { return c.Documents.PollInterval.String() }},
	"logging.level":           {kind: kindChoice, choices: []string{"debug", "info", "warn", "error"}, get: func(c *Config) string { return c.Logging.Level }},
	"logging.format":          {kind: kindChoice, choices: []string{"text", "json"}, get: func(c *Config) string { return c.Logging.Format }},
	"output.format":           {kind: kindChoice, choices: []string{"text", "json", "yaml"}, get: func(c *Config) string { return c.Output.Format }},
	"output.no_color":         {kind: kindBool, get: func(c *Config) string { return strconv.FormatBool(c.Output.NoColor) }},
}

// Keys lists every configuration key in sorted order
func Keys() []string {
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func lookupKey(key string) (keyDef, error) {
	def, ok := keys[key]
	if !ok {
		return keyDef{}, errors.New(errors.ErrCodeConfigUnknownKey, fmt.Sprintf("unknown configuration key %q", key)).
			WithSuggestion("Valid keys: " + strings.Join(Keys(), ", "))
	}
	return def, nil
}

// Get returns the value of a dot-notation key such as api.url
func (c *Config) Get(key string) (string, error) {
	def, err := lookupKey(key)
	if err != nil {
		return "", err
	}
	return def.get(c), nil
}

// Set writes key=value into the YAML file at path, keeping other keys. The
// value is checked against the key's type before anything is written.
func Set(path, key, value string) error {
	def, err := lookupKey(key)
	if err != nil {
		return err
	}

	typed, err := parseValue(key, def, value)
	if err != nil {
		return err
	}

	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return errors.Wrap(errors.ErrCodeConfigLoad, "failed to parse config "+path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case !os.IsNotExist(err):
		return errors.Wrap(errors.ErrCodeConfigLoad, "failed to read config "+path, err)
	}

	setNested(doc, strings.Split(key, "."), typed)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigSave, "failed to marshal config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeConfigSave, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeConfigSave, "failed to write config "+path, err)
	}
	return nil
}

func parseValue(key string, def keyDef, value string) (any, error) {
	invalid := func(cause error) error {
		return errors.Wrap(errors.ErrCodeConfigSave, fmt.Sprintf("invalid value %q for %s", value, key), cause)
	}

	switch def.kind {
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, invalid(err)
		}
		if d <= 0 {
			return nil, invalid(fmt.Errorf("duration must be positive"))
		}
		return d.String(), nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, invalid(err)
		}
		return b, nil
	case kindChoice:
		v := strings.ToLower(strings.TrimSpace(value))
		for _, c := range def.choices {
			if v == c {
				return v, nil
			}
		}
		return nil, invalid(fmt.Errorf("must be one of %s", strings.Join(def.choices, ", ")))
	default:
		return value, nil
	}
}

func setNested(doc map[string]any, path []string, value any) {
	for _, p := range path[:len(path)-1] {
		child, ok := doc[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			doc[p] = child
		}
		doc = child
	}
	doc[path[len(path)-1]] = value
}
