// Package resolver dereferences local $ref pointers inside a parsed document.
//
// Resolution is lenient by contract: it never errors and never loops. A chain
// that revisits a pointer stops at the last node reached, and a pointer whose
// target is missing yields the pointer-bearing node unchanged, which callers
// treat as "absent" (see IsUnresolved).
//
// A Cache may be shared by every check of a single run so that repeated
// resolution of the same pointer costs one map lookup. Caches must not be
// shared between runs over different documents.
package resolver

import (
	"iter"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/oaserrors"
)

// Cache memoizes pointer -> resolved node for one document.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]target
}

// target is a resolved node and the last pointer followed to reach it.
type target struct {
	node *document.Node
	via  string
}

// NewCache returns an empty run-scoped cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]target)}
}

func (c *Cache) get(ptr string) (target, bool) {
	if c == nil {
		return target{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.entries[ptr]
	return t, ok
}

func (c *Cache) put(ptr string, t target) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ptr] = t
}

// Len returns the number of memoized pointers.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Resolver follows $ref pointers within one document.
type Resolver struct {
	root  *document.Node
	cache *Cache
}

// New creates a Resolver for doc. A nil cache disables memoization.
func New(doc *document.Document, cache *Cache) *Resolver {
	var root *document.Node
	if doc != nil {
		root = doc.Root
	}
	return &Resolver{root: root, cache: cache}
}

// Resolve returns the concrete node n designates. Non-pointer nodes are
// returned as is. The result is never nil when n is non-nil.
func (r *Resolver) Resolve(n *document.Node) *document.Node {
	node, _ := r.Follow(n)
	return node
}

// Follow is like Resolve but also returns the last pointer followed, which
// names where the returned node lives in the document. via is "" when n is
// not a pointer or its first hop is dangling.
func (r *Resolver) Follow(n *document.Node) (node *document.Node, via string) {
	ptr := n.Ref()
	if ptr == "" {
		return n, ""
	}
	if hit, ok := r.cache.get(ptr); ok {
		return hit.node, hit.via
	}

	seen := map[string]bool{}
	cur := n
	for {
		ref := cur.Ref()
		if ref == "" || seen[ref] {
			break
		}
		seen[ref] = true
		next, ok := r.Lookup(ref)
		if !ok {
			break
		}
		cur, via = next, ref
	}

	r.cache.put(ptr, target{node: cur, via: via})
	return cur, via
}

// ResolvePointer resolves a pointer string as if it appeared in a $ref.
// It returns nil when the first hop does not exist.
func (r *Resolver) ResolvePointer(ptr string) *document.Node {
	first, ok := r.Lookup(ptr)
	if !ok {
		return nil
	}
	return r.Resolve(first)
}

// Check resolves n and reports why resolution stopped short, if it did.
// A nil error means n resolved to a node that does not carry a $ref.
func (r *Resolver) Check(n *document.Node) (*document.Node, error) {
	ptr := n.Ref()
	if ptr == "" {
		return n, nil
	}
	seen := map[string]bool{}
	cur := n
	for {
		ref := cur.Ref()
		if ref == "" {
			return cur, nil
		}
		if seen[ref] {
			return cur, &oaserrors.ReferenceError{Ref: ptr, IsCircular: true}
		}
		seen[ref] = true
		next, ok := r.Lookup(ref)
		if !ok {
			msg := "target not found"
			if ref != ptr {
				msg = "target of " + ref + " not found"
			}
			return cur, &oaserrors.ReferenceError{Ref: ptr, Message: msg}
		}
		cur = next
	}
}

// Lookup returns the node addressed by a local JSON pointer ("#/a/b").
// Pointers into other documents are not resolvable.
func (r *Resolver) Lookup(ptr string) (*document.Node, bool) {
	if r == nil || r.root == nil {
		return nil, false
	}
	tokens, ok := splitPointer(ptr)
	if !ok {
		return nil, false
	}

	cur := r.root
	for _, token := range tokens {
		switch cur.Kind {
		case document.KindMapping:
			next := cur.Get(token)
			if next == nil {
				return nil, false
			}
			cur = next
		case document.KindSequence:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(i)
		default:
			return nil, false
		}
	}
	return cur, true
}

// IsUnresolved reports whether n still carries a $ref, meaning resolution
// stopped at a dangling or cyclic pointer and the data should be skipped.
func IsUnresolved(n *document.Node) bool {
	return n.IsRef()
}

// Operations iterates every operation in source order, following path items
// that are themselves $ref pointers.
func (r *Resolver) Operations(doc *document.Document) iter.Seq[document.Operation] {
	return func(yield func(document.Operation) bool) {
		for path, item := range doc.Paths().Pairs() {
			for op := range document.OperationsOf(path, r.Resolve(item)) {
				op.Node = r.Resolve(op.Node)
				if !yield(op) {
					return
				}
			}
		}
	}
}

// unescapeToken decodes a JSON pointer reference token (RFC 6901).
// splitPointer splits a local JSON pointer into reference tokens. Each token
// is percent-decoded before ~1 and ~0 are unescaped, so %2F stays within its
// token.
func splitPointer(ptr string) ([]string, bool) {
	frag, ok := strings.CutPrefix(ptr, "#")
	if !ok {
		return nil, false
	}
	if frag == "" || frag == "/" {
		return []string{}, true
	}
	if !strings.HasPrefix(frag, "/") {
		return nil, false
	}
	tokens := strings.Split(frag[1:], "/")
	for i, t := range tokens {
		if decoded, err := url.PathUnescape(t); err == nil {
			t = decoded
		}
		tokens[i] = unescapeToken(t)
	}
	return tokens, true
}

func unescapeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// EscapeToken encodes a string as a JSON pointer reference token.
func EscapeToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}
