package checks

import (
	"context"
	"fmt"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/locator"
)

var securityDefined = engine.Check{
	Name:        NameSecurityDefined,
	Description: "Every operation must be covered by a security requirement naming defined schemes",
	Params:      []string{"allowAnonymous: accept an explicit empty security list on an operation (default false)"},
	Func:        checkSecurityDefined,
}

func checkSecurityDefined(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	allowAnonymous := in.Params().BoolOr("allowAnonymous", false)
	root := in.Document.Root
	schemes := root.Lookup("components", "securitySchemes")
	if in.Document.IsOAS2() {
		schemes = root.Get("securityDefinitions")
	}

	var out []finding.Finding
	global := root.Get("security")
	out = append(out, undefinedSchemes(in, global, schemes, []string{"security"})...)

	for _, op := range operations(in) {
		local := op.Node.Get("security")
		switch {
		case local != nil:
			if local.Len() == 0 && allowAnonymous {
				continue
			}
			if local.Len() == 0 {
				r := locator.Node(in.Source, locator.FallbackStart, extend(op.Site, "security")...)
				out = append(out, in.Finding(r, op.label()+" disables security"))
				continue
			}
			out = append(out, undefinedSchemes(in, local, schemes, extend(op.Site, "security"))...)
		case global.Len() == 0:
			r := locator.Node(in.Source, locator.FallbackStart, op.Site...)
			out = append(out, in.Finding(r, op.label()+" has no security requirement"))
		}
	}
	return out, nil
}

// undefinedSchemes reports scheme names used in a security requirement list
// that are not declared.
func undefinedSchemes(in *engine.Input, requirements, schemes *document.Node, site []string) []finding.Finding {
	var out []finding.Finding
	sc := in.Scanner()
	for _, req := range requirements.Items() {
		for name := range req.Pairs() {
			var r locator.Range
			r, sc = sc.Key(site, name, locator.FallbackStart)
			if !schemes.Has(name) {
				out = append(out, in.Finding(r, fmt.Sprintf("security scheme %q is not defined", name)))
			}
		}
	}
	return out
}
