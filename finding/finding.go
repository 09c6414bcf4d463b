// Package finding defines the result vocabulary shared by checks, the engine,
// and report exporters.
package finding

import (
	"fmt"

	"github.com/erraggy/oaslint/internal/severity"
	"github.com/erraggy/oaslint/locator"
)

// Severity is the rule severity carried by a finding.
type Severity = severity.Severity

// Severity levels, re-exported for callers outside this module.
const (
	Low      = severity.SeverityLow
	Medium   = severity.SeverityMedium
	High     = severity.SeverityHigh
	Critical = severity.SeverityCritical
)

// Finding is one reported issue. It is immutable once produced.
type Finding struct {
	// From is the zero-based byte offset where the range starts
	From int `json:"from" yaml:"from"`
	// To is the zero-based byte offset just past the range
	To int `json:"to" yaml:"to"`
	// Severity of the originating rule (critical for engine failures)
	Severity Severity `json:"severity" yaml:"severity"`
	// Message is the human-readable description
	Message string `json:"message" yaml:"message"`
	// Source is the originating rule ID, or the check name for synthetic findings
	Source string `json:"source" yaml:"source"`
}

// New builds a finding over r.
func New(r locator.Range, sev Severity, message, source string) Finding {
	return Finding{From: r.From, To: r.To, Severity: sev, Message: message, Source: source}
}

// Range returns the finding's byte range.
func (f Finding) Range() locator.Range {
	return locator.Range{From: f.From, To: f.To}
}

// String returns a formatted representation using a severity symbol:
// "✗" for Critical, "⚠" for High, "ℹ" for Medium and "·" for Low.
func (f Finding) String() string {
	return fmt.Sprintf("%s [%s] %d-%d: %s", Symbol(f.Severity), f.Source, f.From, f.To, f.Message)
}

// Location returns "line:column" of the finding start within src.
func (f Finding) Location(src string) string {
	line, col := locator.LineCol(src, f.From)
	return fmt.Sprintf("%d:%d", line, col)
}

// Symbol returns the display symbol for a severity.
func Symbol(s Severity) string {
	switch s {
	case Critical:
		return "✗"
	case High:
		return "⚠"
	case Low:
		return "·"
	default:
		return "ℹ"
	}
}

type dedupeKey struct {
	from, to int
	message  string
}

// Dedupe drops findings that repeat an earlier (range, message) pair,
// keeping the first occurrence and the original order. It is meant to be
// applied to the output of a single rule.
func Dedupe(findings []Finding) []Finding {
	if len(findings) < 2 {
		return findings
	}
	seen := make(map[dedupeKey]bool, len(findings))
	out := findings[:0:0]
	for _, f := range findings {
		k := dedupeKey{from: f.From, to: f.To, message: f.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}

// Passed returns the rule IDs in ids that no finding names as its source,
// preserving the order of ids.
func Passed(ids []string, findings []Finding) []string {
	failed := make(map[string]bool, len(findings))
	for _, f := range findings {
		failed[f.Source] = true
	}
	var passed []string
	for _, id := range ids {
		if !failed[id] {
			passed = append(passed, id)
		}
	}
	return passed
}

// Counts tallies findings per severity.
func Counts(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int, 4)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// Worst returns the highest severity among findings. ok is false when
// findings is empty.
func Worst(findings []Finding) (worst Severity, ok bool) {
	for i, f := range findings {
		if i == 0 || f.Severity.Rank() > worst.Rank() {
			worst = f.Severity
		}
	}
	return worst, len(findings) > 0
}
