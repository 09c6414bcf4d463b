// Package config loads oaslint CLI configuration.
//
// Values are layered, lowest precedence first:
//
//  1. built-in defaults
//  2. the config file (explicit path, or ./oaslint.yaml / ./oaslint.yml)
//  3. OASLINT_* environment variables (OASLINT_FAIL_ON -> fail_on)
//  4. command-line flags that were explicitly set (--fail-on -> fail_on)
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/erraggy/oaslint/baseline"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/internal/severity"
	"github.com/erraggy/oaslint/oaserrors"
	"github.com/erraggy/oaslint/rules"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "OASLINT_"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FailOnNone disables the failing exit code.
const FailOnNone = "none"

// Defaults.
const (
	DefaultFormat   = FormatText
	DefaultLogLevel = "warn"
	DefaultFailOn   = "high"
)

// DefaultFiles are looked up in the working directory when no file is given.
var DefaultFiles = []string{"oaslint.yaml", "oaslint.yml"}

// flagKeys maps flag names whose config key is not the snake_case spelling.
var flagKeys = map[string]string{
	"disable": "disabled",
}

// Config holds all CLI configuration options.
type Config struct {
	Rules        string            `koanf:"rules"`
	Format       string            `koanf:"format"`
	Concurrency  int               `koanf:"concurrency"`
	CheckTimeout time.Duration     `koanf:"check_timeout"`
	BaselineDir  string            `koanf:"baseline_dir"`
	BaselineTTL  time.Duration     `koanf:"baseline_ttl"`
	BaselineMax  int               `koanf:"baseline_max"`
	Disabled     []string          `koanf:"disabled"`
	Severity     map[string]string `koanf:"severity"`
	LogLevel     string            `koanf:"log_level"`
	FailOn       string            `koanf:"fail_on"`

	// File is the config file that was loaded, if any
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"format":        DefaultFormat,
		"concurrency":   0,
		"check_timeout": engine.DefaultCheckTimeout.String(),
		"baseline_ttl":  baseline.DefaultTTL.String(),
		"baseline_max":  baseline.DefaultMaxEntries,
		"log_level":     DefaultLogLevel,
		"fail_on":       DefaultFailOn,
	}
}

// Load loads configuration from defaults, cfgFile, the environment and
// flags. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, &oaserrors.ConfigError{Option: "config", Value: used, Message: "reading config file", Cause: err}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			if key, ok := flagKeys[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &oaserrors.ConfigError{Option: "config", Message: "decoding configuration", Cause: err}
	}
	cfg.File = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the explicit path, or the first default file found.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Validate checks values that the loader cannot type-check.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return &oaserrors.ConfigError{Option: "format", Value: c.Format, Message: "must be text, json or yaml"}
	}
	if c.Concurrency < 0 {
		return &oaserrors.ConfigError{Option: "concurrency", Value: c.Concurrency, Message: "must not be negative"}
	}
	if c.CheckTimeout <= 0 {
		return &oaserrors.ConfigError{Option: "check_timeout", Value: c.CheckTimeout, Message: "must be positive"}
	}
	if c.BaselineTTL <= 0 {
		return &oaserrors.ConfigError{Option: "baseline_ttl", Value: c.BaselineTTL, Message: "must be positive"}
	}
	if c.BaselineMax <= 0 {
		return &oaserrors.ConfigError{Option: "baseline_max", Value: c.BaselineMax, Message: "must be positive"}
	}
	if _, err := c.FailOnSeverity(); err != nil {
		return err
	}
	if _, err := c.RuleConfig(); err != nil {
		return err
	}
	return nil
}

// FailOnSeverity returns the minimum severity that fails a lint run, or nil
// when fail_on is "none".
func (c *Config) FailOnSeverity() (*severity.Severity, error) {
	if strings.EqualFold(c.FailOn, FailOnNone) {
		return nil, nil
	}
	s, err := severity.ParseStrict(c.FailOn)
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "fail_on", Value: c.FailOn, Cause: err}
	}
	return &s, nil
}

// RuleConfig builds the rule filter from disabled and severity.
func (c *Config) RuleConfig() (*rules.Config, error) {
	rc := rules.NewConfig()
	for _, id := range c.Disabled {
		if id = strings.TrimSpace(id); id != "" {
			rc.Disable(id)
		}
	}
	for id, raw := range c.Severity {
		s, err := severity.ParseStrict(raw)
		if err != nil {
			return nil, &oaserrors.ConfigError{Option: "severity." + id, Value: raw, Cause: err}
		}
		rc.SetSeverity(id, s)
	}
	return rc, nil
}

// SlogLevel maps log_level to a slog level. Unknown names mean warn.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// EngineOptions returns the engine options the configuration implies.
// Baselines are wired only when baseline_dir is set.
func (c *Config) EngineOptions(logger engine.Logger) ([]engine.Option, error) {
	rc, err := c.RuleConfig()
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithConcurrency(c.Concurrency),
		engine.WithCheckTimeout(c.CheckTimeout),
		engine.WithRuleConfig(rc),
	}
	if c.BaselineDir != "" {
		cache := baseline.NewCache(baseline.DirSource{Dir: c.BaselineDir},
			baseline.WithTTL(c.BaselineTTL), baseline.WithMaxEntries(c.BaselineMax))
		opts = append(opts, engine.WithBaselines(cache))
	}
	return opts, nil
}
