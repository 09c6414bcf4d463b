// Package commands provides the cobra command tree for the oaslint CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/erraggy/oaslint"
	"github.com/erraggy/oaslint/baseline"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/internal/config"
)

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		noColor bool
	)

	rootCmd := &cobra.Command{
		Use:   "oaslint",
		Short: "oaslint - rule-driven OpenAPI linter",
		Long: `oaslint runs declarative rule catalogs against OpenAPI 2.0 and 3.x
documents and reports findings with their location in the source text.

Configuration is read from ./oaslint.yaml (or --config), OASLINT_*
environment variables and flags, in increasing order of precedence.`,
		Version: oaslint.Version(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				color.NoColor = true
			}
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./oaslint.yaml)")
	flags.StringP("rules", "r", "", "Rule catalog file (YAML, JSON or TOML)")
	flags.StringP("format", "f", config.DefaultFormat, "Output format: text, json, yaml")
	flags.Int("concurrency", 0, "Maximum checks running at once (0 = number of CPUs)")
	flags.Duration("check-timeout", engine.DefaultCheckTimeout, "Bound on checks that wait for external data")
	flags.String("baseline-dir", "", "Directory of baseline documents for breaking-change checks")
	flags.Duration("baseline-ttl", baseline.DefaultTTL, "How long a loaded baseline is reused")
	flags.Int("baseline-max", baseline.DefaultMaxEntries, "Maximum number of cached baselines")
	flags.StringSlice("disable", nil, "Rule IDs to disable")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	flags.String("fail-on", config.DefaultFailOn, "Exit non-zero on findings at or above: low, medium, high, critical, none")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatText, config.FormatJSON, config.FormatYAML}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("fail-on", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"low", "medium", "high", "critical", config.FailOnNone}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewLintCommand())
	rootCmd.AddCommand(NewRulesCommand())
	rootCmd.AddCommand(NewChecksCommand())
	rootCmd.AddCommand(NewLocateCommand())
	rootCmd.AddCommand(NewMCPCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command until it returns or an interrupt arrives.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		Writef(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context, loading the
// defaults when the command was run outside the root command.
func GetConfig(cmd *cobra.Command) (*config.Config, error) {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
			return c, nil
		}
	}
	return config.Load("", nil)
}

// newLogger builds the structured logger used by the engine. Logs go to
// stderr so they never mix with structured output.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

func requireRules(path string) error {
	if path == "" {
		return fmt.Errorf("no rule catalog given: pass --rules or set rules in oaslint.yaml")
	}
	return nil
}
