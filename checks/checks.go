// Package checks holds the built-in check implementations rule catalogs bind
// to through call.function.
//
// Every check is a pure function over *engine.Input: it reads the parsed
// document, resolves $ref pointers through the run's resolver, and locates
// its findings in the raw source with the locator package. Checks never
// mutate the document. Only noBreakingChanges suspends, to fetch a baseline
// document; it is registered as suspending so the engine bounds it with a
// timeout.
//
// Checks treat unresolved references as absent data and skip them silently.
//
// A misconfigured rule (missing or invalid parameters) makes the check return
// an *oaserrors.ConfigError, which the engine reports as one critical finding
// attributed to the check.
package checks

import (
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/oaserrors"
	"github.com/erraggy/oaslint/resolver"
)

// Registered check names.
const (
	NameHTTPSServers      = "httpsServers"
	NameCompanionMethods  = "companionMethods"
	NamePropertyCasing    = "propertyCasing"
	NameParameterCasing   = "parameterCasing"
	NameOperationFields   = "operationFields"
	NamePathPattern       = "pathPattern"
	NameVersionFormat     = "versionFormat"
	NameRefTargets        = "refTargets"
	NameResponseCodes     = "responseCodes"
	NameSecurityDefined   = "securityDefined"
	NameFieldPresent      = "fieldPresent"
	NameNoBreakingChanges = "noBreakingChanges"
	NameMediaTypes        = "mediaTypes"
)

// All returns the built-in checks in registration order.
func All() []engine.Check {
	return []engine.Check{
		httpsServers,
		companionMethods,
		propertyCasing,
		parameterCasing,
		operationFields,
		pathPattern,
		versionFormat,
		refTargets,
		responseCodes,
		mediaTypes,
		securityDefined,
		fieldPresent,
		noBreakingChanges,
	}
}

// Registry returns a registry holding every built-in check.
func Registry() *engine.Registry {
	return engine.MustRegistry(All()...)
}

// opSite is an operation together with the key paths it is written at.
type opSite struct {
	document.Operation
	// Site is the key path of the operation object
	Site []string
	// PathSite is the key path of the enclosing path item
	PathSite []string
}

// label renders an operation as "GET /pets".
func (o opSite) label() string {
	return strings.ToUpper(o.Method) + " " + o.Path
}

// operations lists every operation in source order, following path items
// written as $ref pointers.
func operations(in *engine.Input) []opSite {
	var out []opSite
	for path, item := range in.Document.Paths().Pairs() {
		resolved, site := follow(in.Resolver, item, []string{"paths", path})
		if resolver.IsUnresolved(resolved) {
			continue
		}
		for op := range document.OperationsOf(path, resolved) {
			out = append(out, opSite{
				Operation: op,
				Site:      extend(site, op.Method),
				PathSite:  site,
			})
		}
	}
	return out
}

// follow resolves n written at site, and returns the key path the resolved
// node lives at.
func follow(r *resolver.Resolver, n *document.Node, site []string) (*document.Node, []string) {
	node, via := r.Follow(n)
	if via == "" {
		return node, site
	}
	if keys, ok := locator.SplitPointer(via); ok {
		return node, keys
	}
	return node, nil
}

// paramSite is a resolved parameter object and where it lives.
type paramSite struct {
	Node *document.Node
	Site []string
}

func (p paramSite) name() string { return p.Node.Get("name").String() }
func (p paramSite) in() string   { return p.Node.Get("in").String() }

// parameters returns the path-level then operation-level parameters of op.
// Unresolvable entries are skipped.
func parameters(in *engine.Input, op opSite) []paramSite {
	var out []paramSite
	collect := func(list *document.Node, site []string) {
		for i, p := range list.Items() {
			node, at := follow(in.Resolver, p, extend(site, "parameters", strconv.Itoa(i)))
			if resolver.IsUnresolved(node) || !node.IsMapping() {
				continue
			}
			out = append(out, paramSite{Node: node, Site: at})
		}
	}
	collect(op.PathItem.Get("parameters"), op.PathSite)
	collect(op.Node.Get("parameters"), op.Site)
	return out
}

// schemaRoots lists every schema reachable from an operation (parameters,
// request bodies and responses), then the named component schemas.
func schemaRoots(in *engine.Input) []resolver.SchemaRoot {
	var roots []resolver.SchemaRoot
	add := func(n *document.Node, site []string) {
		if n != nil {
			roots = append(roots, resolver.SchemaRoot{Schema: n, Site: site})
		}
	}
	content := func(owner *document.Node, site []string) {
		for mt, media := range owner.Get("content").Pairs() {
			add(media.Get("schema"), extend(site, "content", mt, "schema"))
		}
	}

	for _, op := range operations(in) {
		for _, p := range parameters(in, op) {
			add(p.Node.Get("schema"), extend(p.Site, "schema"))
			content(p.Node, p.Site)
		}
		if rb := op.Node.Get("requestBody"); rb != nil {
			body, site := follow(in.Resolver, rb, extend(op.Site, "requestBody"))
			content(body, site)
		}
		for code, resp := range op.Node.Get("responses").Pairs() {
			body, site := follow(in.Resolver, resp, extend(op.Site, "responses", code))
			add(body.Get("schema"), extend(site, "schema"))
			content(body, site)
		}
	}

	for name, s := range in.Document.Root.Lookup("components", "schemas").Pairs() {
		add(s, []string{"components", "schemas", name})
	}
	for name, s := range in.Document.Root.Get("definitions").Pairs() {
		add(s, []string{"definitions", name})
	}
	return roots
}

func extend(path []string, parts ...string) []string {
	if path == nil {
		return nil
	}
	return append(slices.Clip(path), parts...)
}

func missingParam(check, param string) error {
	return &oaserrors.ConfigError{Option: check + "." + param, Message: "parameter is required"}
}

func invalidParam(check, param string, value any, cause error) error {
	return &oaserrors.ConfigError{Option: check + "." + param, Value: value, Message: "invalid value", Cause: cause}
}
