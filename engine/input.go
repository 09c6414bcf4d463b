package engine

import (
	"github.com/erraggy/oaslint/baseline"
	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/resolver"
	"github.com/erraggy/oaslint/rules"
)

// Input is what a check receives for one rule. Everything reachable from it
// is read-only.
type Input struct {
	// Document is the parsed document
	Document *document.Document
	// Source is the raw text the document was parsed from
	Source string
	// Rule is the definition being executed
	Rule rules.Definition
	// Resolver dereferences $ref pointers; its cache is scoped to the run
	Resolver *resolver.Resolver
	// Baselines serves comparison documents; nil when none is configured
	Baselines baseline.Source
	// Logger carries run, rule and check attributes
	Logger Logger
}

// Params returns the rule's parameter bag.
func (in *Input) Params() rules.Params {
	return in.Rule.Params()
}

// Finding builds a finding over r with the rule's severity and ID. The
// message is the rule message followed by detail, when both are set.
func (in *Input) Finding(r locator.Range, detail string) finding.Finding {
	msg := in.Rule.Message
	switch {
	case msg == "":
		msg = detail
	case detail != "":
		msg += ": " + detail
	}
	return finding.New(r, in.Rule.Severity, msg, in.Rule.ID)
}

// Scanner returns a locator scanner positioned at the start of the source.
func (in *Input) Scanner() locator.Scanner {
	return locator.NewScanner(in.Source)
}

// Whole returns the range covering the entire source.
func (in *Input) Whole() locator.Range {
	return locator.FallbackDocument.Range(in.Source)
}

// Start returns the empty range at the start of the source.
func (in *Input) Start() locator.Range {
	return locator.FallbackStart.Range(in.Source)
}
