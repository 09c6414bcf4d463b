package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oaslint/baseline"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/internal/severity"
	"github.com/erraggy/oaslint/oaserrors"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, engine.DefaultCheckTimeout, cfg.CheckTimeout)
	assert.Equal(t, baseline.DefaultTTL, cfg.BaselineTTL)
	assert.Equal(t, baseline.DefaultMaxEntries, cfg.BaselineMax)
	assert.Equal(t, DefaultFailOn, cfg.FailOn)
	assert.Empty(t, cfg.File)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "oaslint.yml", `
rules: catalog.yaml
format: json
check_timeout: 3s
disabled: [R1, R2]
severity:
  R3: low
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "oaslint.yml", cfg.File)
	assert.Equal(t, "catalog.yaml", cfg.Rules)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 3*time.Second, cfg.CheckTimeout)
	assert.Equal(t, []string{"R1", "R2"}, cfg.Disabled)

	rc, err := cfg.RuleConfig()
	require.NoError(t, err)
	assert.True(t, rc.IsDisabled("R1"))
	assert.False(t, rc.IsDisabled("R3"))
	assert.Equal(t, severity.SeverityLow, rc.SeverityFor("R3", severity.SeverityHigh))
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeConfig(t, dir, "custom.yaml", "format: json\nconcurrency: 2\nfail_on: low\n")

	t.Setenv("OASLINT_FORMAT", "yaml")
	t.Setenv("OASLINT_CONCURRENCY", "4")
	t.Setenv("OASLINT_DISABLED", "A,B")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", FormatText, "")
	flags.Int("concurrency", 0, "")
	flags.String("fail-on", DefaultFailOn, "")
	flags.Duration("check-timeout", 0, "")
	flags.StringSlice("disable", nil, "")
	require.NoError(t, flags.Parse([]string{"--fail-on", "none", "--check-timeout", "750ms"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	// env beats file; unchanged flags do not override
	assert.Equal(t, FormatYAML, cfg.Format)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, []string{"A", "B"}, cfg.Disabled)
	// changed flags beat file and env
	assert.Equal(t, FailOnNone, cfg.FailOn)
	assert.Equal(t, 750*time.Millisecond, cfg.CheckTimeout)

	require.NoError(t, flags.Set("disable", "C"))
	cfg, err = Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, cfg.Disabled)

	threshold, err := cfg.FailOnSeverity()
	require.NoError(t, err)
	assert.Nil(t, threshold)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		option string
	}{
		{name: "format", body: "format: xml\n", option: "format"},
		{name: "concurrency", body: "concurrency: -1\n", option: "concurrency"},
		{name: "timeout", body: "check_timeout: 0s\n", option: "check_timeout"},
		{name: "fail on", body: "fail_on: severe\n", option: "fail_on"},
		{name: "severity", body: "severity:\n  R1: urgent\n", option: "severity.R1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			path := writeConfig(t, dir, "oaslint.yaml", tt.body)

			_, err := Load(path, nil)
			var cfgErr *oaserrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.option, cfgErr.Option)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("nope.yaml", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}

func TestFailOnSeverity(t *testing.T) {
	cfg := &Config{FailOn: "Medium"}
	threshold, err := cfg.FailOnSeverity()
	require.NoError(t, err)
	require.NotNil(t, threshold)
	assert.Equal(t, severity.SeverityMedium, *threshold)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"error": slog.LevelError,
		"loud":  slog.LevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, (&Config{LogLevel: in}).SlogLevel(), in)
	}
}

func TestEngineOptions(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)

	opts, err := cfg.EngineOptions(engine.NopLogger{})
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	cfg.BaselineDir = t.TempDir()
	opts, err = cfg.EngineOptions(engine.NopLogger{})
	require.NoError(t, err)
	assert.Len(t, opts, 5)

	_, err = engine.New(engine.MustRegistry(), opts...)
	require.NoError(t, err)
}
