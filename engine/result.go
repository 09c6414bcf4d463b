package engine

import (
	"slices"
	"time"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/finding"
)

// Metadata is document-level information exporters need.
// It is empty when the document could not be parsed.
type Metadata struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	APIVersion  string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	SpecVersion string `json:"specVersion,omitempty" yaml:"specVersion,omitempty"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
}

func metadataOf(doc *document.Document) Metadata {
	version, _ := doc.Version()
	return Metadata{
		Title:       doc.Title(),
		APIVersion:  doc.APIVersion(),
		SpecVersion: version,
		Format:      doc.Format.String(),
	}
}

// Result is the outcome of one run.
type Result struct {
	// RunID identifies the run in logs
	RunID string `json:"runId" yaml:"runId"`
	// Findings in catalog order, then in each check's production order
	Findings []finding.Finding `json:"findings" yaml:"findings"`
	// Metadata extracted from the document
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	// Rules lists the IDs of the rules that ran, in catalog order
	Rules []string `json:"rules" yaml:"rules"`
	// Skipped lists the IDs of rules whose check is not registered
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// Errored lists the IDs of rules whose check panicked or returned an error
	Errored []string `json:"errored,omitempty" yaml:"errored,omitempty"`
	// Duration is the wall time of the run
	Duration time.Duration `json:"duration" yaml:"duration"`
	// Err is the parse error when the document could not be parsed
	Err error `json:"-" yaml:"-"`
}

// Passed returns the IDs of rules that ran to completion and produced no
// findings. Nothing passes when the document could not be parsed.
func (r *Result) Passed() []string {
	if r.Err != nil {
		return nil
	}
	passed := finding.Passed(r.Rules, r.Findings)
	if len(r.Errored) == 0 {
		return passed
	}
	return slices.DeleteFunc(passed, func(id string) bool {
		return slices.Contains(r.Errored, id)
	})
}

// Failed reports whether any finding is at least as severe as min.
func (r *Result) Failed(min finding.Severity) bool {
	for _, f := range r.Findings {
		if f.Severity.AtLeast(min) {
			return true
		}
	}
	return false
}

// For returns the findings attributed to source, in order.
func (r *Result) For(source string) []finding.Finding {
	var out []finding.Finding
	for _, f := range r.Findings {
		if f.Source == source {
			out = append(out, f)
		}
	}
	return out
}
