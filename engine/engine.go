// Package engine executes rule catalogs against OpenAPI documents.
//
// A run moves through four phases:
//
//   - Loaded: the caller supplies the raw text and a rule catalog.
//   - Filtered: each rule is bound to the registered check named by its
//     call.function; rules naming unknown checks are skipped silently.
//   - Executing: every bound check runs, concurrently, against the shared
//     read-only document. A check that panics or returns an error yields
//     one synthetic critical finding instead of aborting the run.
//   - Aggregated: findings are concatenated in catalog order, regardless of
//     completion order.
//
// Only an unparsable document short-circuits a run; the result then holds a
// single critical finding spanning the whole document.
//
// # Basic usage
//
//	eng, err := engine.New(checks.Registry())
//	if err != nil {
//	    return err
//	}
//	result := eng.Run(ctx, string(raw), catalog)
//	for _, f := range result.Findings {
//	    fmt.Println(f)
//	}
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/erraggy/oaslint/baseline"
	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/oaserrors"
	"github.com/erraggy/oaslint/resolver"
	"github.com/erraggy/oaslint/rules"
)

// SourceParse is the finding source used when the document cannot be parsed.
const SourceParse = "parse"

// DefaultCheckTimeout bounds suspending checks when WithCheckTimeout is not set.
const DefaultCheckTimeout = 10 * time.Second

// Engine runs rule catalogs. It is safe for concurrent use; every run gets
// its own document, resolver cache and scanners.
type Engine struct {
	registry     *Registry
	logger       Logger
	concurrency  int
	checkTimeout time.Duration
	baselines    baseline.Source
	ruleConfig   *rules.Config
}

// Option configures an Engine.
type Option func(*Engine) error

// New creates an engine over registry.
func New(registry *Registry, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, &oaserrors.ConfigError{Option: "registry", Message: "registry is required"}
	}
	e := &Engine{
		registry:     registry,
		logger:       NopLogger{},
		concurrency:  runtime.GOMAXPROCS(0),
		checkTimeout: DefaultCheckTimeout,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// WithLogger sets the logger. Default: NopLogger.
func WithLogger(l Logger) Option {
	return func(e *Engine) error {
		if l == nil {
			l = NopLogger{}
		}
		e.logger = l
		return nil
	}
}

// WithConcurrency bounds how many checks run at once. Zero means GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return &oaserrors.ConfigError{Option: "concurrency", Value: n, Message: "must not be negative"}
		}
		if n == 0 {
			n = runtime.GOMAXPROCS(0)
		}
		e.concurrency = n
		return nil
	}
}

// WithCheckTimeout bounds each suspending check. Default: DefaultCheckTimeout.
func WithCheckTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return &oaserrors.ConfigError{Option: "check_timeout", Value: d, Message: "must be positive"}
		}
		e.checkTimeout = d
		return nil
	}
}

// WithBaselines sets the comparison-document source handed to checks.
func WithBaselines(src baseline.Source) Option {
	return func(e *Engine) error {
		e.baselines = src
		return nil
	}
}

// WithRuleConfig applies disabled rules and severity overrides to every
// catalog passed to Run.
func WithRuleConfig(cfg *rules.Config) Option {
	return func(e *Engine) error {
		e.ruleConfig = cfg
		return nil
	}
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Plan applies the engine's rule config to catalog and binds it.
func (e *Engine) Plan(catalog rules.Catalog) *Plan {
	return e.registry.Bind(catalog.Filter(e.ruleConfig))
}

// Run validates src against catalog.
func (e *Engine) Run(ctx context.Context, src string, catalog rules.Catalog) *Result {
	return e.RunPlan(ctx, src, e.Plan(catalog))
}

// RunPlan validates src against an already bound plan.
func (e *Engine) RunPlan(ctx context.Context, src string, plan *Plan) *Result {
	start := time.Now()
	res := &Result{
		RunID:   uuid.NewString(),
		Rules:   plan.IDs(),
		Skipped: plan.SkippedIDs(),
	}
	log := e.logger.With("run", res.RunID)
	for _, d := range plan.Skipped {
		log.Debug("rule skipped: no registered check", "rule", d.ID, "function", d.Call.Function)
	}

	doc, err := document.Parse(src)
	if err != nil {
		log.Warn("document not parsable", "error", err)
		res.Err = err
		res.Findings = []finding.Finding{
			finding.New(locator.Whole(src), finding.Critical, err.Error(), SourceParse),
		}
		res.Duration = time.Since(start)
		return res
	}
	res.Metadata = metadataOf(doc)

	log.Debug("executing", "rules", len(plan.Bound), "concurrency", e.concurrency)
	cache := resolver.NewCache()
	results := make([][]finding.Finding, len(plan.Bound))
	errored := make([]bool, len(plan.Bound))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, b := range plan.Bound {
		g.Go(func() error {
			in := &Input{
				Document:  doc,
				Source:    src,
				Rule:      b.Rule,
				Resolver:  resolver.New(doc, cache),
				Baselines: e.baselines,
				Logger:    log.With("rule", b.Rule.ID, "check", b.Check.Name),
			}
			results[i], errored[i] = e.execute(ctx, in, b.Check)
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		res.Findings = append(res.Findings, r...)
		if errored[i] {
			res.Errored = append(res.Errored, plan.Bound[i].Rule.ID)
		}
	}
	res.Duration = time.Since(start)
	log.Debug("aggregated", "findings", len(res.Findings), "duration", res.Duration)
	return res
}

// execute runs one check and converts its failure modes into findings.
// It reports whether the check failed.
func (e *Engine) execute(ctx context.Context, in *Input, c Check) ([]finding.Finding, bool) {
	out, err := e.call(ctx, in, c)
	if err != nil {
		if notApplicable(err) {
			in.Logger.Debug("rule not applicable", "error", err)
			return nil, false
		}
		var rerr *oaserrors.RuleExecutionError
		if !errors.As(err, &rerr) {
			rerr = &oaserrors.RuleExecutionError{Check: c.Name, RuleID: in.Rule.ID, Cause: err}
		}
		in.Logger.Warn("check failed", "error", rerr)
		return []finding.Finding{
			finding.New(in.Whole(), finding.Critical, rerr.Error(), c.Name),
		}, true
	}

	for i := range out {
		if out[i].Source == "" {
			out[i].Source = in.Rule.ID
		}
	}
	return finding.Dedupe(out), false
}

// call invokes c, bounding suspending checks by the check timeout.
func (e *Engine) call(ctx context.Context, in *Input, c Check) ([]finding.Finding, error) {
	if !c.Suspending {
		return invoke(ctx, in, c)
	}

	ctx, cancel := context.WithTimeout(ctx, e.checkTimeout)
	defer cancel()

	type outcome struct {
		findings []finding.Finding
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		f, err := invoke(ctx, in, c)
		done <- outcome{f, err}
	}()

	select {
	case o := <-done:
		return o.findings, o.err
	case <-ctx.Done():
		// A check that ignores ctx keeps running; its result is dropped.
		return nil, ctx.Err()
	}
}

func invoke(ctx context.Context, in *Input, c Check) (out []finding.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &oaserrors.RuleExecutionError{
				Check:    c.Name,
				RuleID:   in.Rule.ID,
				Panicked: true,
				Cause:    fmt.Errorf("%v", r),
			}
		}
	}()
	return c.Func(ctx, in)
}

// notApplicable reports failures that mean "rule not applicable": a fetch
// failure or a suspending check that ran out of time.
func notApplicable(err error) bool {
	return errors.Is(err, oaserrors.ErrFetch) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
