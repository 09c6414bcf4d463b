package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/erraggy/oaslint/checks"
	"github.com/erraggy/oaslint/internal/config"
)

// NewChecksCommand creates the checks command.
func NewChecksCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List the built-in check functions",
		Long: `List the check functions a rule catalog can name in call.function.
Use --verbose to include the parameters each check reads from
call.functionParams.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := GetConfig(cmd)
			if err != nil {
				return err
			}
			all := checks.All()
			if cfg.Format != config.FormatText {
				rows := make([]map[string]any, 0, len(all))
				for _, c := range all {
					rows = append(rows, map[string]any{
						"name":        c.Name,
						"description": c.Description,
						"params":      c.Params,
						"suspending":  c.Suspending,
					})
				}
				return OutputStructured(cmd.OutOrStdout(), rows, cfg.Format)
			}

			header := table.Row{"Name", "Description"}
			if verbose {
				header = append(header, "Params")
			}
			t := newTable(cmd.OutOrStdout(), header)
			for _, c := range all {
				name := c.Name
				if c.Suspending {
					name += " *"
				}
				row := table.Row{name, c.Description}
				if verbose {
					row = append(row, strings.Join(c.Params, "\n"))
				}
				t.AppendRow(row)
			}
			t.SetCaption("* waits for external data; bounded by --check-timeout")
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "Show check parameters")
	return cmd
}
