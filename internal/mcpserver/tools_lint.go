package mcpserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/internal/severity"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/rules"
)

type lintInput struct {
	Spec        sourceInput       `json:"spec"                   jsonschema:"The OpenAPI document to lint"`
	Rules       sourceInput       `json:"rules"                  jsonschema:"The rule catalog to run"`
	Disabled    []string          `json:"disabled,omitempty"     jsonschema:"Rule IDs to skip"`
	Severity    map[string]string `json:"severity,omitempty"     jsonschema:"Severity overrides keyed by rule ID (low, medium, high, critical)"`
	MinSeverity string            `json:"min_severity,omitempty" jsonschema:"Only return findings at or above this severity"`
	Offset      int               `json:"offset,omitempty"       jsonschema:"Skip the first N findings (for pagination)"`
	Limit       int               `json:"limit,omitempty"        jsonschema:"Maximum number of findings to return (default 100)"`
}

type lintFinding struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

type lintOutput struct {
	RunID        string         `json:"run_id"`
	Title        string         `json:"title,omitempty"`
	SpecVersion  string         `json:"spec_version,omitempty"`
	Parsed       bool           `json:"parsed"`
	RuleCount    int            `json:"rule_count"`
	FindingCount int            `json:"finding_count"`
	Returned     int            `json:"returned"`
	Counts       map[string]int `json:"counts,omitempty"`
	ByRule       []groupCount   `json:"by_rule,omitempty"`
	Passed       []string       `json:"passed,omitempty"`
	Skipped      []string       `json:"skipped,omitempty"`
	Errored      []string       `json:"errored,omitempty"`
	Findings     []lintFinding  `json:"findings,omitempty"`
}

func handleLint(ctx context.Context, _ *mcp.CallToolRequest, input lintInput) (*mcp.CallToolResult, lintOutput, error) {
	ruleCfg, err := lintRuleConfig(input)
	if err != nil {
		return errResult(err), lintOutput{}, nil
	}
	threshold := severity.SeverityLow
	if input.MinSeverity != "" {
		if threshold, err = severity.ParseStrict(input.MinSeverity); err != nil {
			return errResult(err), lintOutput{}, nil
		}
	}

	catalog, err := input.Rules.catalog(ctx)
	if err != nil {
		return errResult(err), lintOutput{}, nil
	}
	src, err := input.Spec.text(ctx)
	if err != nil {
		return errResult(err), lintOutput{}, nil
	}
	eng, err := newEngine(engine.WithRuleConfig(ruleCfg))
	if err != nil {
		return errResult(err), lintOutput{}, nil
	}

	res := eng.Run(ctx, src, catalog)
	output := lintOutput{
		RunID:        res.RunID,
		Title:        res.Metadata.Title,
		SpecVersion:  res.Metadata.SpecVersion,
		Parsed:       res.Err == nil,
		RuleCount:    len(res.Rules),
		FindingCount: len(res.Findings),
		Passed:       res.Passed(),
		Skipped:      res.Skipped,
		Errored:      res.Errored,
		ByRule: groupAndSort(res.Findings, func(f finding.Finding) []string {
			return []string{f.Source}
		}),
	}
	if counts := finding.Counts(res.Findings); len(counts) > 0 {
		output.Counts = make(map[string]int, len(counts))
		for sev, n := range counts {
			output.Counts[sev.String()] = n
		}
	}

	selected := makeSlice[lintFinding](len(res.Findings))
	for _, f := range res.Findings {
		if !f.Severity.AtLeast(threshold) {
			continue
		}
		line, col := locator.LineCol(src, f.From)
		selected = append(selected, lintFinding{
			Rule:     f.Source,
			Severity: f.Severity.String(),
			Message:  f.Message,
			Line:     line,
			Column:   col,
			From:     f.From,
			To:       f.To,
		})
	}
	output.Findings = paginate(selected, input.Offset, input.Limit)
	output.Returned = len(output.Findings)

	return nil, output, nil
}

func lintRuleConfig(input lintInput) (*rules.Config, error) {
	rc := rules.NewConfig()
	for _, id := range input.Disabled {
		if id = strings.TrimSpace(id); id != "" {
			rc.Disable(id)
		}
	}
	var errs []error
	for id, raw := range input.Severity {
		s, err := severity.ParseStrict(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rc.SetSeverity(id, s)
	}
	return rc, errors.Join(errs...)
}
