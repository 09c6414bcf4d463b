package resolver

import (
	"strconv"

	"github.com/erraggy/oaslint/document"
)

// SchemaEntry describes one schema reached by WalkSchema.
type SchemaEntry struct {
	// Name is the property name when the schema was reached through
	// properties or patternProperties, "" otherwise
	Name string
	// Schema is the resolved schema node
	Schema *document.Node
	// Trail is the sequence of keywords and names followed from the start node
	Trail []string
	// Ref is the last $ref followed to reach Schema, if any
	Ref string
	// Site is the key path where the entry is written in the document, before
	// any $ref is followed. It is nil when the root was given without a site.
	Site []string
	// Pointer is the key path where Schema lives: Site, or the target of Ref
	Pointer []string
}

// SchemaRoot is a starting point for WalkSchemas.
type SchemaRoot struct {
	// Schema is the (possibly pointer) schema node
	Schema *document.Node
	// Site is the key path of Schema in the document, if known
	Site []string
}

// Composition keywords whose values are a list of subschemas.
var listKeywords = []string{"allOf", "oneOf", "anyOf", "prefixItems"}

// Keywords whose values are a single subschema.
var singleKeywords = []string{"items", "additionalProperties", "not", "contains", "unevaluatedProperties"}

// WalkSchema visits start and every subschema reachable from it through
// properties, patternProperties, composition keywords, item schemas, and
// open-ended property maps, resolving $ref at every step.
//
// Each distinct schema node is expanded once per walk, so schemas that are
// cyclic through pointers or through shared structure terminate. A property
// whose schema was already expanded is still reported under its own name,
// but not descended into again. fn returning false stops the walk.
func (r *Resolver) WalkSchema(start *document.Node, fn func(SchemaEntry) bool) {
	r.WalkSchemas([]SchemaRoot{{Schema: start}}, fn)
}

// WalkSchemas walks several roots with one shared visited set, so a schema
// reachable from more than one root is expanded once.
func (r *Resolver) WalkSchemas(roots []SchemaRoot, fn func(SchemaEntry) bool) {
	w := &schemaWalker{r: r, fn: fn, visited: make(map[*document.Node]bool)}
	for _, root := range roots {
		w.walk(SchemaEntry{Schema: root.Schema, Site: root.Site})
		if w.stopped {
			return
		}
	}
}

type schemaWalker struct {
	r       *Resolver
	fn      func(SchemaEntry) bool
	visited map[*document.Node]bool
	stopped bool
}

func (w *schemaWalker) walk(e SchemaEntry) {
	if w.stopped || e.Schema == nil {
		return
	}
	e.Pointer = e.Site
	if ref := e.Schema.Ref(); ref != "" {
		var via string
		e.Schema, via = w.r.Follow(e.Schema)
		e.Ref = ref
		if via != "" {
			e.Ref = via
			e.Pointer = pointerKeys(via)
		}
	}
	if IsUnresolved(e.Schema) || !e.Schema.IsMapping() {
		return
	}
	if w.visited[e.Schema] {
		// Already expanded: still report the property name at this site.
		if e.Name != "" && !w.fn(e) {
			w.stopped = true
		}
		return
	}
	w.visited[e.Schema] = true

	if !w.fn(e) {
		w.stopped = true
		return
	}

	for _, kw := range []string{"properties", "patternProperties"} {
		for name, sub := range e.Schema.Get(kw).Pairs() {
			w.walk(SchemaEntry{Name: name, Schema: sub, Trail: extend(e.Trail, kw, name), Site: at(e.Pointer, kw, name)})
			if w.stopped {
				return
			}
		}
	}
	for _, kw := range singleKeywords {
		sub := e.Schema.Get(kw)
		if sub.IsSequence() {
			// OAS 3.0 and draft-04 style tuple items.
			for i, item := range sub.Items() {
				i := strconv.Itoa(i)
				w.walk(SchemaEntry{Schema: item, Trail: extend(e.Trail, kw, i), Site: at(e.Pointer, kw, i)})
			}
			if w.stopped {
				return
			}
			continue
		}
		w.walk(SchemaEntry{Schema: sub, Trail: extend(e.Trail, kw), Site: at(e.Pointer, kw)})
		if w.stopped {
			return
		}
	}
	for _, kw := range listKeywords {
		for i, sub := range e.Schema.Get(kw).Items() {
			i := strconv.Itoa(i)
			w.walk(SchemaEntry{Schema: sub, Trail: extend(e.Trail, kw, i), Site: at(e.Pointer, kw, i)})
			if w.stopped {
				return
			}
		}
	}
}

// Properties returns the resolved property schemas of schema, including
// properties contributed through allOf, in first-seen order.
func (r *Resolver) Properties(schema *document.Node) ([]string, map[string]*document.Node) {
	var names []string
	props := make(map[string]*document.Node)
	visited := make(map[*document.Node]bool)

	var collect func(n *document.Node)
	collect = func(n *document.Node) {
		n = r.Resolve(n)
		if !n.IsMapping() || IsUnresolved(n) || visited[n] {
			return
		}
		visited[n] = true
		for name, sub := range n.Get("properties").Pairs() {
			if _, ok := props[name]; ok {
				continue
			}
			names = append(names, name)
			props[name] = r.Resolve(sub)
		}
		for _, sub := range n.Get("allOf").Items() {
			collect(sub)
		}
	}
	collect(schema)
	return names, props
}

func extend(trail []string, parts ...string) []string {
	out := make([]string, 0, len(trail)+len(parts))
	out = append(out, trail...)
	return append(out, parts...)
}

// at extends a key path, keeping unknown paths unknown.
func at(path []string, parts ...string) []string {
	if path == nil {
		return nil
	}
	return extend(path, parts...)
}

// pointerKeys splits a local JSON pointer into unescaped reference tokens.
func pointerKeys(ptr string) []string {
	keys, _ := splitPointer(ptr)
	return keys
}
