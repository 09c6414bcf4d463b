package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oaslint/internal/config"
	"github.com/erraggy/oaslint/internal/severity"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// OutputStructured writes data in the specified format (json or yaml) to w.
func OutputStructured(w io.Writer, data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case config.FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case config.FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", bytes)
	return nil
}

// FormatSpecPath returns a display-friendly path for an OpenAPI document.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// readSpec reads a document from a path, or from in for StdinFilePath.
func readSpec(path string, in io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == StdinFilePath {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", FormatSpecPath(path), err)
	}
	return string(data), nil
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// newTable returns a light-style table writing to w.
func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

// severityColor returns the display color for a severity level.
func severityColor(s severity.Severity) *color.Color {
	switch s {
	case severity.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case severity.SeverityHigh:
		return color.New(color.FgRed)
	case severity.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

// colorSeverity renders a severity label in its color.
func colorSeverity(s severity.Severity) string {
	return severityColor(s).Sprint(s.String())
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
