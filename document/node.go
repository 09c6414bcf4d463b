package document

import (
	"iter"
	"strconv"
)

// Kind identifies the structural kind of a Node.
type Kind uint8

const (
	// KindNull is an explicit null or an empty value.
	KindNull Kind = iota
	// KindScalar is a string, number, or boolean literal.
	KindScalar
	// KindMapping is an ordered mapping of string keys to nodes.
	KindMapping
	// KindSequence is an ordered list of nodes.
	KindSequence
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// ScalarType records how a scalar literal was resolved by the decoder.
// It lets checks distinguish `openapi: 3.0` (a float) from `openapi: "3.0"`.
type ScalarType uint8

const (
	// ScalarNone is used for non-scalar nodes.
	ScalarNone ScalarType = iota
	// ScalarString is a string literal.
	ScalarString
	// ScalarInt is an integer literal.
	ScalarInt
	// ScalarFloat is a floating point literal.
	ScalarFloat
	// ScalarBool is a boolean literal.
	ScalarBool
	// ScalarNull is a null literal.
	ScalarNull
	// ScalarOther is any other tagged scalar (timestamps, binary, custom tags).
	ScalarOther
)

// String returns the name of the scalar type.
func (s ScalarType) String() string {
	switch s {
	case ScalarString:
		return "string"
	case ScalarInt:
		return "int"
	case ScalarFloat:
		return "float"
	case ScalarBool:
		return "bool"
	case ScalarNull:
		return "null"
	case ScalarOther:
		return "other"
	default:
		return "none"
	}
}

// Node is one element of the canonical document tree.
//
// Nodes are read-only once Parse returns. A Node reached through a YAML alias
// is the same pointer as its anchor, so identity comparisons are meaningful.
type Node struct {
	// Kind is the structural kind
	Kind Kind
	// Scalar is the resolved scalar type (ScalarNone for collections)
	Scalar ScalarType
	// Value is the literal scalar text exactly as decoded
	Value string
	// Quoted is true when the scalar was written with quotes
	Quoted bool

	keys   []string
	fields map[string]*Node
	items  []*Node
}

// Get returns the value for key in a mapping node, or nil.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	return n.fields[key]
}

// Has reports whether a mapping node contains key.
func (n *Node) Has(key string) bool {
	if n == nil || n.Kind != KindMapping {
		return false
	}
	_, ok := n.fields[key]
	return ok
}

// Lookup walks a sequence of mapping keys (or decimal indices for sequences)
// and returns the node at the end, or nil if any step is missing.
func (n *Node) Lookup(keys ...string) *Node {
	cur := n
	for _, k := range keys {
		if cur == nil {
			return nil
		}
		switch cur.Kind {
		case KindMapping:
			cur = cur.fields[k]
		case KindSequence:
			i, err := strconv.Atoi(k)
			if err != nil {
				return nil
			}
			cur = cur.Index(i)
		default:
			return nil
		}
	}
	return cur
}

// Keys returns the mapping keys in source order.
// The returned slice must not be modified.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	return n.keys
}

// Pairs iterates the mapping entries in source order.
func (n *Node) Pairs() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		if n == nil || n.Kind != KindMapping {
			return
		}
		for _, k := range n.keys {
			if !yield(k, n.fields[k]) {
				return
			}
		}
	}
}

// Items returns the sequence elements.
// The returned slice must not be modified.
func (n *Node) Items() []*Node {
	if n == nil || n.Kind != KindSequence {
		return nil
	}
	return n.items
}

// Index returns the i-th sequence element, or nil when out of range.
func (n *Node) Index(i int) *Node {
	if n == nil || n.Kind != KindSequence || i < 0 || i >= len(n.items) {
		return nil
	}
	return n.items[i]
}

// Len returns the number of entries of a mapping or sequence, 0 otherwise.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case KindMapping:
		return len(n.keys)
	case KindSequence:
		return len(n.items)
	default:
		return 0
	}
}

// Str returns the scalar text and whether the node is a non-null scalar.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != KindScalar {
		return "", false
	}
	return n.Value, true
}

// String returns the scalar text or "" for anything else.
func (n *Node) String() string {
	s, _ := n.Str()
	return s
}

// IsString reports whether the node is a scalar resolved as a string.
func (n *Node) IsString() bool {
	return n != nil && n.Kind == KindScalar && n.Scalar == ScalarString
}

// Bool returns the boolean value of a bool scalar.
func (n *Node) Bool() (bool, bool) {
	if n == nil || n.Kind != KindScalar || n.Scalar != ScalarBool {
		return false, false
	}
	b, err := strconv.ParseBool(n.Value)
	if err != nil {
		// YAML 1.1 style literals are not booleans in YAML 1.2.
		return false, false
	}
	return b, true
}

// IsMapping reports whether the node is a mapping.
func (n *Node) IsMapping() bool {
	return n != nil && n.Kind == KindMapping
}

// IsSequence reports whether the node is a sequence.
func (n *Node) IsSequence() bool {
	return n != nil && n.Kind == KindSequence
}

// Ref returns the $ref pointer carried by a mapping node, or "".
func (n *Node) Ref() string {
	ref := n.Get("$ref")
	if ref == nil || ref.Kind != KindScalar {
		return ""
	}
	return ref.Value
}

// IsRef reports whether the node is a mapping carrying a $ref.
func (n *Node) IsRef() bool {
	return n.Ref() != ""
}

// Interface converts the subtree into plain Go values (map[string]any,
// []any, string, int64, float64, bool, nil). Cycles introduced by YAML
// aliases are cut and rendered as nil.
func (n *Node) Interface() any {
	return n.toInterface(make(map[*Node]bool))
}

func (n *Node) toInterface(active map[*Node]bool) any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindMapping:
		if active[n] {
			return nil
		}
		active[n] = true
		defer delete(active, n)
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = n.fields[k].toInterface(active)
		}
		return out
	case KindSequence:
		if active[n] {
			return nil
		}
		active[n] = true
		defer delete(active, n)
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.toInterface(active)
		}
		return out
	case KindScalar:
		switch n.Scalar {
		case ScalarInt:
			if v, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
				return v
			}
		case ScalarFloat:
			if v, err := strconv.ParseFloat(n.Value, 64); err == nil {
				return v
			}
		case ScalarBool:
			if v, ok := n.Bool(); ok {
				return v
			}
		case ScalarNull:
			return nil
		}
		return n.Value
	default:
		return nil
	}
}

// newMapping returns an empty mapping node ready to be filled by the builder.
func newMapping() *Node {
	return &Node{Kind: KindMapping, fields: make(map[string]*Node)}
}

// set appends key unless it is already present. Duplicate keys keep the first
// value, matching the source-order assumption the locator relies on.
func (n *Node) set(key string, value *Node) bool {
	if _, exists := n.fields[key]; exists {
		return false
	}
	n.keys = append(n.keys, key)
	n.fields[key] = value
	return true
}
