package checks

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/internal/httputil"
	"github.com/erraggy/oaslint/locator"
)

var mediaTypes = engine.Check{
	Name:        NameMediaTypes,
	Description: "Media types in content maps and consumes/produces lists must be well formed",
	Params:      []string{"allowed: media types or type/* patterns that may be used (default any)"},
	Func:        checkMediaTypes,
}

// mediaSite is one media type key or list entry and where it is written.
type mediaSite struct {
	mediaType string
	site      []string
}

func checkMediaTypes(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	allowed := in.Params().Strings("allowed")
	for _, a := range allowed {
		if !httputil.IsValidMediaType(a) {
			return nil, invalidParam(NameMediaTypes, "allowed", a, nil)
		}
	}

	var out []finding.Finding
	seen := make(map[string]bool)
	for _, m := range mediaSites(in) {
		if m.site != nil {
			k := strings.Join(m.site, "\x00")
			if seen[k] {
				continue
			}
			seen[k] = true
		}

		var msg string
		switch {
		case !httputil.IsValidMediaType(m.mediaType):
			msg = fmt.Sprintf("media type %q is malformed", m.mediaType)
		case len(allowed) > 0 && !slices.ContainsFunc(allowed, func(p string) bool {
			return httputil.MatchesMediaType(p, m.mediaType)
		}):
			msg = fmt.Sprintf("media type %s is not one of %s", m.mediaType, strings.Join(allowed, ", "))
		default:
			continue
		}
		r := in.Start()
		if m.site != nil {
			if found := locator.Node(in.Source, locator.FallbackStart, m.site...); !found.IsEmpty() {
				r = found
			}
		}
		out = append(out, in.Finding(r, msg))
	}
	return out, nil
}

// mediaSites lists media types in source order: document-level
// consumes/produces, then per operation, then component request bodies and
// responses. A shared component reached through $ref yields the same site
// each time.
func mediaSites(in *engine.Input) []mediaSite {
	var out []mediaSite
	content := func(owner *document.Node, site []string) {
		for mt := range owner.Get("content").Pairs() {
			out = append(out, mediaSite{mediaType: mt, site: extend(site, "content", mt)})
		}
	}
	list := func(owner *document.Node, site []string, key string) {
		for i, v := range owner.Get(key).Items() {
			out = append(out, mediaSite{mediaType: v.String(), site: extend(site, key, strconv.Itoa(i))})
		}
	}

	root := in.Document.Root
	list(root, []string{}, "consumes")
	list(root, []string{}, "produces")

	for _, op := range operations(in) {
		list(op.Node, op.Site, "consumes")
		list(op.Node, op.Site, "produces")
		for _, p := range parameters(in, op) {
			content(p.Node, p.Site)
		}
		if rb := op.Node.Get("requestBody"); rb != nil {
			body, site := follow(in.Resolver, rb, extend(op.Site, "requestBody"))
			content(body, site)
		}
		for code, resp := range op.Node.Get("responses").Pairs() {
			body, site := follow(in.Resolver, resp, extend(op.Site, "responses", code))
			content(body, site)
		}
	}

	components := root.Get("components")
	for name, rb := range components.Get("requestBodies").Pairs() {
		content(rb, []string{"components", "requestBodies", name})
	}
	for name, resp := range components.Get("responses").Pairs() {
		content(resp, []string{"components", "responses", name})
	}
	return out
}
