package checks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/oaslint/baseline"
	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/internal/httputil"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/resolver"
)

var noBreakingChanges = engine.Check{
	Name:        NameNoBreakingChanges,
	Description: "Compared with the baseline, no path, operation or success response is removed and no required parameter is added",
	Params:      []string{"baseline: baseline document id (default: slug of info.title)"},
	Suspending:  true,
	Func:        checkNoBreakingChanges,
}

func checkNoBreakingChanges(ctx context.Context, in *engine.Input) ([]finding.Finding, error) {
	if in.Baselines == nil {
		in.Logger.Debug("no baseline source configured")
		return nil, nil
	}
	id := baseline.Key(in.Document, in.Params().StringOr("baseline", ""))
	if id == "" {
		return nil, nil
	}
	base, err := in.Baselines.Baseline(ctx, id)
	if err != nil {
		return nil, err
	}
	if base == nil {
		in.Logger.Debug("baseline unavailable", "baseline", id)
		return nil, nil
	}

	d := &differ{in: in, base: resolver.New(base, nil)}
	return d.diff(base), nil
}

type differ struct {
	in   *engine.Input
	base *resolver.Resolver
	out  []finding.Finding
}

func (d *differ) report(r locator.Range, format string, args ...any) {
	d.out = append(d.out, d.in.Finding(r, fmt.Sprintf(format, args...)))
}

func (d *differ) diff(base *document.Document) []finding.Finding {
	in := d.in
	current := in.Document.Paths()
	pathsKey := locator.Key(in.Source, "paths", locator.FallbackStart)

	for path, baseItem := range base.Paths().Pairs() {
		item := current.Get(path)
		if item == nil {
			d.report(pathsKey, "path %s was removed", path)
			continue
		}
		item = in.Resolver.Resolve(item)
		if resolver.IsUnresolved(item) {
			continue
		}
		methods := document.MethodsOf(item)
		for op := range document.OperationsOf(path, d.base.Resolve(baseItem)) {
			label := strings.ToUpper(op.Method) + " " + path
			if !slices.Contains(methods, op.Method) {
				d.report(locator.PathKey(in.Source, path, locator.FallbackStart), "operation %s was removed", label)
			}
		}
	}

	for _, op := range operations(in) {
		baseItem := d.base.Resolve(base.Paths().Get(op.Path))
		baseOp := d.base.Resolve(baseItem.Get(op.Method))
		if baseOp == nil {
			continue
		}
		d.requiredParams(op, baseItem, baseOp)
		d.successResponses(op, baseOp)
	}
	return d.out
}

// requiredParams reports required parameters that are new or newly required.
func (d *differ) requiredParams(op opSite, baseItem, baseOp *document.Node) {
	before := make(map[string]bool)
	for _, list := range []*document.Node{baseItem.Get("parameters"), baseOp.Get("parameters")} {
		for _, p := range list.Items() {
			p = d.base.Resolve(p)
			before[paramKey(p)] = requiredParam(p)
		}
	}
	for _, p := range parameters(d.in, op) {
		if !requiredParam(p.Node) {
			continue
		}
		wasRequired, existed := before[paramKey(p.Node)]
		if wasRequired {
			continue
		}
		r, _ := d.in.Scanner().Field(p.Site, "name", p.name(), locator.FallbackStart)
		if existed {
			d.report(r, "%s: %s parameter %q became required", op.label(), p.in(), p.name())
		} else {
			d.report(r, "%s: new required %s parameter %q", op.label(), p.in(), p.name())
		}
	}
}

// successResponses reports 2XX responses present in the baseline but gone now.
func (d *differ) successResponses(op opSite, baseOp *document.Node) {
	responses := d.in.Resolver.Resolve(op.Node.Get("responses"))
	for code := range d.base.Resolve(baseOp.Get("responses")).Pairs() {
		if httputil.IsSuccess(code) && !responses.Has(code) {
			r := locator.Node(d.in.Source, locator.FallbackStart, op.Site...)
			d.report(r, "%s: response %s was removed", op.label(), code)
		}
	}
}

func paramKey(p *document.Node) string {
	return p.Get("in").String() + "\x00" + p.Get("name").String()
}

func requiredParam(p *document.Node) bool {
	b, _ := p.Get("required").Bool()
	return b || p.Get("in").String() == "path"
}
