package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/erraggy/oaslint/checks"
	"github.com/erraggy/oaslint/internal/config"
	"github.com/erraggy/oaslint/rules"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [catalog]",
		Short: "Load a rule catalog and show how its rules bind",
		Long: `Load and validate a rule catalog, then list each rule with its severity,
check function and whether that function is registered. Rules bound to an
unknown function are skipped by lint.

The catalog defaults to --rules or the rules setting in oaslint.yaml.`,
		Example: `  # Inspect the configured catalog
  oaslint rules

  # Inspect a TOML catalog as JSON
  oaslint rules rules.toml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRules,
	}
}

type ruleRow struct {
	ID       string `json:"id" yaml:"id"`
	Severity string `json:"severity" yaml:"severity"`
	Function string `json:"function" yaml:"function"`
	Bound    bool   `json:"bound" yaml:"bound"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig(cmd)
	if err != nil {
		return err
	}
	path := cfg.Rules
	if len(args) > 0 {
		path = args[0]
	}
	if err := requireRules(path); err != nil {
		return err
	}

	catalog, err := rules.LoadFile(path)
	if err != nil {
		return err
	}
	if err := catalog.Validate(); err != nil {
		return err
	}
	rc, err := cfg.RuleConfig()
	if err != nil {
		return err
	}
	catalog = catalog.Filter(rc)

	registry := checks.Registry()
	rows := make([]ruleRow, 0, len(catalog))
	for _, d := range catalog {
		_, bound := registry.Lookup(d.Call.Function)
		rows = append(rows, ruleRow{
			ID:       d.ID,
			Severity: d.Severity.String(),
			Function: d.Call.Function,
			Bound:    bound,
			Message:  d.Message,
		})
	}

	if cfg.Format != config.FormatText {
		return OutputStructured(cmd.OutOrStdout(), rows, cfg.Format)
	}

	w := cmd.OutOrStdout()
	t := newTable(w, table.Row{"ID", "Severity", "Function", "Status", "Message"})
	for i, row := range rows {
		status := "bound"
		if !row.Bound {
			status = "skipped"
		}
		t.AppendRow(table.Row{row.ID, colorSeverity(catalog[i].Severity), row.Function, status, row.Message})
	}
	t.Render()
	plan := registry.Bind(catalog)
	Writef(w, "%s: %s\n", path, plan)
	return nil
}
