package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oaslint/oaserrors"
)

// Format is the textual format a document was written in.
type Format int

const (
	// FormatUnknown is used when the format could not be detected.
	FormatUnknown Format = iota
	// FormatYAML is a YAML document.
	FormatYAML
	// FormatJSON is a JSON document.
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Document is the canonical tree built once per validation run from the raw
// source text. It is read-only after Parse returns and safe for concurrent
// readers.
type Document struct {
	// Root is the top-level mapping
	Root *Node
	// Format is the detected source format
	Format Format
	// Size is the length of the source text in bytes
	Size int
}

// lineRe extracts "line N" from decoder error messages.
var lineRe = regexp.MustCompile(`line (\d+)`)

// Parse builds a Document from raw text.
// It fails with *oaserrors.ParseError when the text is empty, not
// well-formed YAML/JSON, or its root is not a mapping.
func Parse(text string) (*Document, error) {
	return ParseBytes([]byte(text))
}

// ParseBytes is like Parse but accepts a byte slice. The slice is not retained.
func ParseBytes(data []byte) (*Document, error) {
	format := detectFormat(data)
	if format == FormatUnknown {
		return nil, &oaserrors.ParseError{Message: "document is empty"}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		perr := &oaserrors.ParseError{Message: "failed to parse " + format.String(), Cause: err}
		if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
			perr.Line, _ = strconv.Atoi(m[1])
		}
		return nil, perr
	}

	b := &builder{memo: make(map[*yaml.Node]*Node)}
	top := b.build(&root)
	if top == nil || top.Kind != KindMapping {
		kind := "empty"
		if top != nil {
			kind = top.Kind.String()
		}
		return nil, &oaserrors.ParseError{Message: fmt.Sprintf("document root must be a mapping, got %s", kind)}
	}

	return &Document{Root: top, Format: format, Size: len(data)}, nil
}

// detectFormat guesses the format from content. JSON starts with '{' or '['.
func detectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\n\r")
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatYAML
}

// builder converts a yaml.Node tree into the canonical Node tree.
type builder struct {
	// memo maps decoder nodes to built nodes so aliases share identity and
	// self-referencing anchors terminate.
	memo map[*yaml.Node]*Node
}

func (b *builder) build(yn *yaml.Node) *Node {
	if yn == nil {
		return nil
	}
	if n, ok := b.memo[yn]; ok {
		return n
	}

	switch yn.Kind {
	case yaml.DocumentNode:
		if len(yn.Content) == 0 {
			return nil
		}
		return b.build(yn.Content[0])

	case yaml.AliasNode:
		return b.build(yn.Alias)

	case yaml.MappingNode:
		n := newMapping()
		b.memo[yn] = n
		var merges []*yaml.Node
		for i := 0; i+1 < len(yn.Content); i += 2 {
			keyNode, valNode := yn.Content[i], yn.Content[i+1]
			if keyNode.ShortTag() == "!!merge" {
				merges = append(merges, valNode)
				continue
			}
			n.set(keyNode.Value, b.build(valNode))
		}
		// Explicit keys win over merged ones regardless of position.
		for _, m := range merges {
			b.merge(n, m)
		}
		return n

	case yaml.SequenceNode:
		n := &Node{Kind: KindSequence}
		b.memo[yn] = n
		n.items = make([]*Node, 0, len(yn.Content))
		for _, child := range yn.Content {
			n.items = append(n.items, b.build(child))
		}
		return n

	case yaml.ScalarNode:
		n := &Node{
			Kind:   KindScalar,
			Value:  yn.Value,
			Quoted: yn.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0,
		}
		switch yn.ShortTag() {
		case "!!str":
			n.Scalar = ScalarString
		case "!!int":
			n.Scalar = ScalarInt
		case "!!float":
			n.Scalar = ScalarFloat
		case "!!bool":
			n.Scalar = ScalarBool
		case "!!null":
			n.Kind = KindNull
			n.Scalar = ScalarNull
		default:
			n.Scalar = ScalarOther
		}
		b.memo[yn] = n
		return n
	}
	return nil
}

// merge applies a YAML merge key value (a mapping or a sequence of mappings).
func (b *builder) merge(into *Node, value *yaml.Node) {
	src := value
	if src.Kind == yaml.AliasNode {
		src = src.Alias
	}
	switch src.Kind {
	case yaml.MappingNode:
		built := b.build(src)
		for k, v := range built.Pairs() {
			into.set(k, v)
		}
	case yaml.SequenceNode:
		for _, item := range src.Content {
			b.merge(into, item)
		}
	}
}
