package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/erraggy/oaslint/checks"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/internal/config"
	"github.com/erraggy/oaslint/internal/severity"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/rules"
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	MinSeverity string // Hide findings below this severity
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint <spec>",
		Short: "Run a rule catalog against an OpenAPI document",
		Long: `Run every rule of the catalog against an OpenAPI document and report
the findings with their line and column.

Rules whose check function is not registered are skipped. The command exits
non-zero when a finding is at or above --fail-on (default: high).`,
		Example: `  # Lint with a catalog
  oaslint lint --rules rules.yaml openapi.yaml

  # Read the document from stdin
  cat openapi.yaml | oaslint lint -r rules.yaml -

  # Machine-readable output, never fail the build
  oaslint lint -r rules.yaml -f json --fail-on none openapi.yaml

  # Skip rules and compare against published baselines
  oaslint lint -r rules.yaml --disable SEC-002 --baseline-dir ./published openapi.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.MinSeverity, "min-severity", "", "Hide findings below this severity")

	return cmd
}

// lintReport is the structured form of a lint run.
type lintReport struct {
	File     string          `json:"file" yaml:"file"`
	RunID    string          `json:"runId" yaml:"runId"`
	Metadata engine.Metadata `json:"metadata" yaml:"metadata"`
	Rules    []string        `json:"rules" yaml:"rules"`
	Passed   []string        `json:"passed" yaml:"passed"`
	Skipped  []string        `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Errored  []string        `json:"errored,omitempty" yaml:"errored,omitempty"`
	Counts   map[string]int  `json:"counts" yaml:"counts"`
	Findings []reportFinding `json:"findings" yaml:"findings"`
	Duration string          `json:"duration" yaml:"duration"`
}

type reportFinding struct {
	Rule     string `json:"rule" yaml:"rule"`
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	From     int    `json:"from" yaml:"from"`
	To       int    `json:"to" yaml:"to"`
}

func runLint(cmd *cobra.Command, specPath string, opts *LintOptions) error {
	cfg, err := GetConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireRules(cfg.Rules); err != nil {
		return err
	}
	threshold := severity.SeverityLow
	if opts.MinSeverity != "" {
		if threshold, err = severity.ParseStrict(opts.MinSeverity); err != nil {
			return err
		}
	}
	failOn, err := cfg.FailOnSeverity()
	if err != nil {
		return err
	}

	catalog, err := rules.LoadFile(cfg.Rules)
	if err != nil {
		return err
	}
	if err := catalog.Validate(); err != nil {
		return err
	}
	src, err := readSpec(specPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	engOpts, err := cfg.EngineOptions(engine.NewSlogAdapter(logger))
	if err != nil {
		return err
	}
	eng, err := engine.New(checks.Registry(), engOpts...)
	if err != nil {
		return err
	}

	res := eng.Run(cmd.Context(), src, catalog)
	logger.Debug("lint finished", "run", res.RunID, "rules", len(res.Rules), "findings", len(res.Findings), "duration", res.Duration)

	report := buildReport(specPath, src, res, threshold)
	if cfg.Format == config.FormatText {
		renderLint(cmd.OutOrStdout(), report, len(res.Findings))
	} else if err := OutputStructured(cmd.OutOrStdout(), report, cfg.Format); err != nil {
		return err
	}

	if failOn != nil && res.Failed(*failOn) {
		n := 0
		for _, f := range res.Findings {
			if f.Severity.AtLeast(*failOn) {
				n++
			}
		}
		return fmt.Errorf("%s at or above %s", plural(n, "finding"), *failOn)
	}
	return nil
}

func buildReport(specPath, src string, res *engine.Result, threshold severity.Severity) lintReport {
	report := lintReport{
		File:     FormatSpecPath(specPath),
		RunID:    res.RunID,
		Metadata: res.Metadata,
		Rules:    res.Rules,
		Passed:   res.Passed(),
		Skipped:  res.Skipped,
		Errored:  res.Errored,
		Counts:   make(map[string]int),
		Findings: []reportFinding{},
		Duration: res.Duration.Round(time.Microsecond).String(),
	}
	for sev, n := range finding.Counts(res.Findings) {
		report.Counts[sev.String()] = n
	}
	for _, f := range res.Findings {
		if !f.Severity.AtLeast(threshold) {
			continue
		}
		line, col := locator.LineCol(src, f.From)
		report.Findings = append(report.Findings, reportFinding{
			Rule:     f.Source,
			Severity: f.Severity.String(),
			Message:  f.Message,
			Line:     line,
			Column:   col,
			From:     f.From,
			To:       f.To,
		})
	}
	return report
}

func renderLint(w io.Writer, r lintReport, total int) {
	title := r.File
	if r.Metadata.Title != "" {
		title = fmt.Sprintf("%s (%s %s, openapi %s)", r.File, r.Metadata.Title, r.Metadata.APIVersion, r.Metadata.SpecVersion)
	}
	Writef(w, "%s\n", color.New(color.Bold).Sprint(title))

	if len(r.Findings) > 0 {
		t := newTable(w, table.Row{"Location", "Severity", "Rule", "Message"})
		for _, f := range r.Findings {
			t.AppendRow(table.Row{fmt.Sprintf("%d:%d", f.Line, f.Column), colorSeverity(severity.Parse(f.Severity)), f.Rule, f.Message})
		}
		t.Render()
	}

	var counts []string
	for _, s := range severity.All() {
		if n := r.Counts[s.String()]; n > 0 {
			counts = append(counts, colorSeverity(s)+fmt.Sprintf(": %d", n))
		}
	}
	summary := fmt.Sprintf("%s, %s, %d passed", plural(len(r.Rules), "rule"), plural(total, "finding"), len(r.Passed))
	if len(r.Errored) > 0 {
		summary += fmt.Sprintf(", %d errored (%s)", len(r.Errored), strings.Join(r.Errored, ", "))
	}
	if len(r.Skipped) > 0 {
		summary += fmt.Sprintf(", %d skipped (%s)", len(r.Skipped), strings.Join(r.Skipped, ", "))
	}
	if len(counts) > 0 {
		summary += " [" + strings.Join(counts, " ") + "]"
	}
	Writef(w, "%s in %s\n", summary, r.Duration)
}
