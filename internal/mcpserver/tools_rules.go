package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oaslint/checks"
)

type rulesInput struct {
	Rules sourceInput `json:"rules" jsonschema:"The rule catalog to load"`
}

type ruleSummary struct {
	ID       string   `json:"id"`
	Severity string   `json:"severity"`
	Function string   `json:"function"`
	Message  string   `json:"message,omitempty"`
	Element  []string `json:"element,omitempty"`
	Bound    bool     `json:"bound"`
}

type rulesOutput struct {
	Count   int           `json:"count"`
	Bound   int           `json:"bound"`
	Skipped int           `json:"skipped"`
	Rules   []ruleSummary `json:"rules,omitempty"`
}

func handleRules(ctx context.Context, _ *mcp.CallToolRequest, input rulesInput) (*mcp.CallToolResult, rulesOutput, error) {
	catalog, err := input.Rules.catalog(ctx)
	if err != nil {
		return errResult(err), rulesOutput{}, nil
	}

	registry := checks.Registry()
	plan := registry.Bind(catalog)
	output := rulesOutput{
		Count:   len(catalog),
		Bound:   len(plan.Bound),
		Skipped: len(plan.Skipped),
		Rules:   makeSlice[ruleSummary](len(catalog)),
	}
	for _, d := range catalog {
		_, bound := registry.Lookup(d.Call.Function)
		output.Rules = append(output.Rules, ruleSummary{
			ID:       d.ID,
			Severity: d.Severity.String(),
			Function: d.Call.Function,
			Message:  d.Message,
			Element:  d.Element,
			Bound:    bound,
		})
	}
	return nil, output, nil
}
