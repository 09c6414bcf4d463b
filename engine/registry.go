package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/oaserrors"
	"github.com/erraggy/oaslint/rules"
)

// CheckFunc implements a rule. It must not mutate the document or the
// source, and returns findings in its own production order. Only suspending
// checks may block on ctx.
type CheckFunc func(ctx context.Context, in *Input) ([]finding.Finding, error)

// Check is a registered check implementation.
type Check struct {
	// Name is the tag rule definitions use in call.function
	Name string
	// Description is a one-line summary for listings
	Description string
	// Params documents the parameters the check reads, as "name: meaning"
	Params []string
	// Suspending marks checks that wait on an external resource; they run
	// under the engine's per-check timeout
	Suspending bool
	// Func is the implementation
	Func CheckFunc
}

// Registry is a closed set of checks, fixed at construction.
type Registry struct {
	checks map[string]Check
	order  []string
}

// NewRegistry builds a registry. Empty names, nil functions and duplicate
// names are configuration errors.
func NewRegistry(checks ...Check) (*Registry, error) {
	r := &Registry{checks: make(map[string]Check, len(checks))}
	for _, c := range checks {
		switch {
		case c.Name == "":
			return nil, &oaserrors.ConfigError{Option: "registry", Message: "check has no name"}
		case c.Func == nil:
			return nil, &oaserrors.ConfigError{Option: "registry", Value: c.Name, Message: "check has no implementation"}
		}
		if _, dup := r.checks[c.Name]; dup {
			return nil, &oaserrors.ConfigError{Option: "registry", Value: c.Name, Message: "duplicate check name"}
		}
		r.checks[c.Name] = c
		r.order = append(r.order, c.Name)
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. It is meant for
// package-level registries built from literals.
func MustRegistry(checks ...Check) *Registry {
	r, err := NewRegistry(checks...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the check registered under name.
func (r *Registry) Lookup(name string) (Check, bool) {
	c, ok := r.checks[name]
	return c, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := slices.Clone(r.order)
	slices.Sort(names)
	return names
}

// Checks returns the registered checks in registration order.
func (r *Registry) Checks() []Check {
	out := make([]Check, len(r.order))
	for i, name := range r.order {
		out[i] = r.checks[name]
	}
	return out
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	return len(r.order)
}

// Bound pairs a rule with the check that implements it.
type Bound struct {
	Rule  rules.Definition
	Check Check
}

// Plan is a catalog filtered against a registry: the rules that will run, in
// catalog order, and the ones skipped because their function is unknown.
// A Plan is read-only and may be reused across runs.
type Plan struct {
	Bound   []Bound
	Skipped []rules.Definition
}

// Bind filters catalog against the registry. Unknown functions are not an
// error; those rules are recorded in Plan.Skipped and never run.
func (r *Registry) Bind(catalog rules.Catalog) *Plan {
	p := &Plan{}
	for _, d := range catalog {
		c, ok := r.checks[d.Call.Function]
		if !ok {
			p.Skipped = append(p.Skipped, d)
			continue
		}
		p.Bound = append(p.Bound, Bound{Rule: d, Check: c})
	}
	return p
}

// IDs returns the IDs of the bound rules in catalog order.
func (p *Plan) IDs() []string {
	ids := make([]string, len(p.Bound))
	for i, b := range p.Bound {
		ids[i] = b.Rule.ID
	}
	return ids
}

// SkippedIDs returns the IDs of the skipped rules in catalog order.
func (p *Plan) SkippedIDs() []string {
	ids := make([]string, len(p.Skipped))
	for i, d := range p.Skipped {
		ids[i] = d.ID
	}
	return ids
}

// String summarizes the plan.
func (p *Plan) String() string {
	return fmt.Sprintf("%d bound, %d skipped", len(p.Bound), len(p.Skipped))
}
