// Package severity provides severity level constants and utilities
// for findings reported by rule checks.
//
// Rule catalogs declare one of four levels:
//   - SeverityLow: Style nits and hints
//   - SeverityMedium: Recommendations (the default for unknown input)
//   - SeverityHigh: Likely defects that should be fixed
//   - SeverityCritical: Violations that block publication, and engine failures
//
// The zero value is SeverityMedium so that a missing or unrecognized level in a
// catalog degrades to the documented default. Use Rank for ordering:
// Low < Medium < High < Critical.
package severity

import (
	"fmt"
	"strings"
)

// Severity indicates the severity level of a finding.
type Severity int

const (
	// SeverityMedium indicates a recommendation. It is the default level.
	SeverityMedium Severity = iota

	// SeverityLow indicates a hint or stylistic note.
	SeverityLow

	// SeverityHigh indicates a likely defect.
	SeverityHigh

	// SeverityCritical indicates a blocking violation or an engine-level failure
	// (unparsable document, failed check).
	SeverityCritical
)

// Diagnostic is the editor-facing severity a rule severity maps to.
type Diagnostic int

const (
	// DiagnosticInfo is the default diagnostic level.
	DiagnosticInfo Diagnostic = iota
	// DiagnosticHint is the lowest diagnostic level.
	DiagnosticHint
	// DiagnosticWarning is shown as a warning squiggle.
	DiagnosticWarning
	// DiagnosticError is shown as an error squiggle.
	DiagnosticError
)

// String returns the string representation of the diagnostic level.
func (d Diagnostic) String() string {
	switch d {
	case DiagnosticHint:
		return "hint"
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return "unknown"
	}
}

// All returns every severity level ordered from least to most severe.
func All() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Parse maps a catalog severity string to a Severity.
// Matching is case-insensitive; unknown input maps to SeverityMedium.
func Parse(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// ParseStrict is like Parse but rejects unknown input.
func ParseStrict(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "medium", "high", "critical":
		return Parse(s), nil
	default:
		return SeverityMedium, fmt.Errorf("severity: unknown level %q (want low, medium, high or critical)", s)
	}
}

// String returns the catalog representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Label returns the capitalized display label used by report exporters.
func (s Severity) Label() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	case SeverityCritical:
		return "Critical"
	default:
		return "Medium"
	}
}

// Diagnostic maps the severity onto the fixed editor diagnostic table.
// Out-of-range values map to DiagnosticInfo.
func (s Severity) Diagnostic() Diagnostic {
	switch s {
	case SeverityLow:
		return DiagnosticHint
	case SeverityHigh:
		return DiagnosticWarning
	case SeverityCritical:
		return DiagnosticError
	default:
		return DiagnosticInfo
	}
}

// Rank returns an ordinal suitable for comparisons (Low=0 ... Critical=3).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 1
	}
}

// AtLeast reports whether s is at least as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails:
// unknown input maps to SeverityMedium.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = Parse(string(text))
	return nil
}
