package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/internal/config"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/oaserrors"
)

// NewLocateCommand creates the locate command.
func NewLocateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <spec> <pointer>",
		Short: "Show where a JSON pointer lands in the source text",
		Long: `Resolve a JSON pointer (with or without the leading #) against an
OpenAPI document and print the line, column and text of the key it names.`,
		Example: `  oaslint locate openapi.yaml /paths/~1pets/get
  oaslint locate openapi.yaml '#/components/schemas/Pet' -f json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(cmd, args[0], args[1])
		},
	}
}

type location struct {
	Pointer string `json:"pointer" yaml:"pointer"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
	From    int    `json:"from" yaml:"from"`
	To      int    `json:"to" yaml:"to"`
	Text    string `json:"text" yaml:"text"`
}

func runLocate(cmd *cobra.Command, specPath, pointer string) error {
	cfg, err := GetConfig(cmd)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(pointer, "#") {
		pointer = "#" + pointer
	}
	keys, ok := locator.SplitPointer(pointer)
	if !ok {
		return &oaserrors.ReferenceError{Ref: pointer, Message: "not a local JSON pointer"}
	}

	src, err := readSpec(specPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := document.Parse(src)
	if err != nil {
		return err
	}
	if len(keys) > 0 && doc.Root.Lookup(keys...) == nil {
		return &oaserrors.ReferenceError{Ref: pointer, Message: "no such element"}
	}

	r := locator.Node(src, locator.FallbackStart, keys...)
	line, col := locator.LineCol(src, r.From)
	loc := location{Pointer: pointer, Line: line, Column: col, From: r.From, To: r.To, Text: r.Text(src)}

	if cfg.Format != config.FormatText {
		return OutputStructured(cmd.OutOrStdout(), loc, cfg.Format)
	}
	Writef(cmd.OutOrStdout(), "%s:%d:%d: %q\n", FormatSpecPath(specPath), loc.Line, loc.Column, loc.Text)
	return nil
}
