package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/erraggy/oaslint"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the oaslint version and, with --verbose, its build metadata.`,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			Writef(w, "%s %s\n", color.New(color.FgCyan, color.Bold).Sprint("oaslint"), oaslint.Version())
			if verbose {
				Writef(w, "%s\n", oaslint.BuildInfo())
			}
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "Show build metadata")
	return cmd
}
