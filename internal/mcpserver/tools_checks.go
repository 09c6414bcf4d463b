package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oaslint/checks"
)

type checksInput struct{}

type checkSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []string `json:"params,omitempty"`
	Suspending  bool     `json:"suspending,omitempty"`
}

type checksOutput struct {
	Count  int            `json:"count"`
	Checks []checkSummary `json:"checks"`
}

func handleChecks(_ context.Context, _ *mcp.CallToolRequest, _ checksInput) (*mcp.CallToolResult, checksOutput, error) {
	all := checks.All()
	output := checksOutput{Count: len(all), Checks: make([]checkSummary, 0, len(all))}
	for _, c := range all {
		output.Checks = append(output.Checks, checkSummary{
			Name:        c.Name,
			Description: c.Description,
			Params:      c.Params,
			Suspending:  c.Suspending,
		})
	}
	return nil, output, nil
}
