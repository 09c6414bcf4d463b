package document

import (
	"iter"
	"strings"
)

// HTTP methods that may appear as operation keys under a path item, in the
// order the OpenAPI Specification lists them.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
	MethodQuery   = "query"
)

var httpMethods = []string{
	MethodGet, MethodPut, MethodPost, MethodDelete,
	MethodOptions, MethodHead, MethodPatch, MethodTrace, MethodQuery,
}

// HTTPMethods returns the operation keys recognized under a path item.
func HTTPMethods() []string {
	out := make([]string, len(httpMethods))
	copy(out, httpMethods)
	return out
}

// IsHTTPMethod reports whether key (case-insensitive) names an operation.
func IsHTTPMethod(key string) bool {
	key = strings.ToLower(key)
	for _, m := range httpMethods {
		if m == key {
			return true
		}
	}
	return false
}

// Operation is one HTTP operation found under the paths block.
type Operation struct {
	// Path is the path template key, e.g. "/users/{id}"
	Path string
	// Method is the lowercase operation key
	Method string
	// Node is the operation object
	Node *Node
	// PathItem is the enclosing path item (unresolved if it was a $ref)
	PathItem *Node
}

// Version returns the declared specification version literal and its node.
// The openapi field wins over swagger when both are present.
func (d *Document) Version() (string, *Node) {
	if d == nil {
		return "", nil
	}
	if n := d.Root.Get("openapi"); n != nil {
		return n.String(), n
	}
	if n := d.Root.Get("swagger"); n != nil {
		return n.String(), n
	}
	return "", nil
}

// IsOAS2 reports whether the document declares Swagger 2.0.
func (d *Document) IsOAS2() bool {
	if d == nil {
		return false
	}
	return d.Root.Has("swagger") && !d.Root.Has("openapi")
}

// Title returns info.title, or "" if absent.
func (d *Document) Title() string {
	if d == nil {
		return ""
	}
	return d.Root.Lookup("info", "title").String()
}

// APIVersion returns info.version, or "" if absent.
func (d *Document) APIVersion() string {
	if d == nil {
		return ""
	}
	return d.Root.Lookup("info", "version").String()
}

// Paths returns the paths mapping, or nil.
func (d *Document) Paths() *Node {
	if d == nil {
		return nil
	}
	return d.Root.Get("paths")
}

// Operations iterates every operation under the paths block in source order.
// Path items that are $ref pointers are yielded unresolved and contribute no
// operations here; use resolver.Operations to follow them.
func (d *Document) Operations() iter.Seq[Operation] {
	return func(yield func(Operation) bool) {
		for path, item := range d.Paths().Pairs() {
			for op := range OperationsOf(path, item) {
				if !yield(op) {
					return
				}
			}
		}
	}
}

// OperationsOf iterates the operations of a single path item in source order.
func OperationsOf(path string, item *Node) iter.Seq[Operation] {
	return func(yield func(Operation) bool) {
		for key, op := range item.Pairs() {
			if !IsHTTPMethod(key) || !op.IsMapping() {
				continue
			}
			if !yield(Operation{Path: path, Method: strings.ToLower(key), Node: op, PathItem: item}) {
				return
			}
		}
	}
}

// MethodsOf returns the lowercase methods defined on a path item, in source order.
func MethodsOf(item *Node) []string {
	var methods []string
	for op := range OperationsOf("", item) {
		methods = append(methods, op.Method)
	}
	return methods
}
