package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oaslint/internal/mcpserver"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the lint tools over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the lint,
rules, checks and locate tools. Server defaults come from OASLINT_MCP_*
environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.Run(cmd.Context())
		},
	}
}
