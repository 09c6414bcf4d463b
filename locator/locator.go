// Package locator maps semantic document coordinates back to byte ranges in
// the raw specification text.
//
// The document model keeps no source positions, so every lookup is a
// heuristic reverse mapping over the text:
//
//  1. Anchor search navigates structural keys (a path, a method, a section)
//     from the document root. YAML blocks are bounded by indentation; JSON
//     and YAML flow collections by bracket matching.
//  2. Leaf search scans the anchor's value block, starting at the caller's
//     cursor, for the target token. An unquoted, word-bounded occurrence is
//     preferred; a quoted one is the fallback. Returned ranges exclude quotes.
//  3. When nothing matches, the coordinate's Fallback policy decides the
//     range: (0,0) or the whole document. Lookups never panic.
//
// Two families sit on top of these primitives: operation-anchored lookups
// (path + method) and paths-block-anchored lookups (path key only).
//
// Lookups are pure. To locate several same-named occurrences in order, thread
// the Scanner returned by one lookup into the next. This assumes structured
// entries and their textual occurrences correspond one-to-one in source order.
package locator

import (
	"net/url"
	"strconv"
	"strings"
)

// Range is a half-open byte range [From, To) into the raw source.
type Range struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// Len returns the number of bytes covered.
func (r Range) Len() int {
	return r.To - r.From
}

// IsEmpty reports whether the range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.To <= r.From
}

// Text returns the covered substring of src, clamped to its bounds.
func (r Range) Text(src string) string {
	from, to := clamp(r.From, len(src)), clamp(r.To, len(src))
	if to < from {
		return ""
	}
	return src[from:to]
}

// Fallback selects the range returned when a lookup finds nothing.
type Fallback int

const (
	// FallbackStart points at the document start: (0,0).
	FallbackStart Fallback = iota
	// FallbackDocument highlights the entire document: (0,len(src)).
	FallbackDocument
)

// Range returns the default range for src under this policy.
func (f Fallback) Range(src string) Range {
	if f == FallbackDocument {
		return Range{From: 0, To: len(src)}
	}
	return Range{}
}

// Whole returns the range covering all of src.
func Whole(src string) Range {
	return FallbackDocument.Range(src)
}

// Scanner threads a cursor between successive lookups over one source.
// It is an immutable value: every lookup returns the advanced Scanner.
type Scanner struct {
	src string
	pos int
}

// NewScanner returns a Scanner positioned at the start of src.
func NewScanner(src string) Scanner {
	return Scanner{src: src}
}

// Cursor returns the byte offset where the next leaf search starts.
func (s Scanner) Cursor() int {
	return s.pos
}

// At returns a copy of s positioned at pos (clamped to the source).
func (s Scanner) At(pos int) Scanner {
	return Scanner{src: s.src, pos: clamp(pos, len(s.src))}
}

// Source returns the text being scanned.
func (s Scanner) Source() string {
	return s.src
}

// Node returns the key range of the node addressed by keys from the root.
// Numeric keys index into sequences; the range of a sequence item is its
// first line.
func Node(src string, fb Fallback, keys ...string) Range {
	b, ok := navigate(src, keys)
	if !ok || len(keys) == 0 {
		return fb.Range(src)
	}
	return Range{From: b.keyFrom, To: b.keyTo}
}

// Pointer is like Node but takes a local JSON pointer ("#/a/b").
func Pointer(src, ptr string, fb Fallback) Range {
	keys, ok := SplitPointer(ptr)
	if !ok {
		return fb.Range(src)
	}
	return Node(src, fb, keys...)
}

// SplitPointer splits a local JSON pointer into unescaped reference tokens.
func SplitPointer(ptr string) ([]string, bool) {
	frag, ok := strings.CutPrefix(ptr, "#")
	if !ok {
		return nil, false
	}
	if frag == "" || frag == "/" {
		return nil, true
	}
	if !strings.HasPrefix(frag, "/") {
		return nil, false
	}
	parts := strings.Split(frag[1:], "/")
	for i, p := range parts {
		if decoded, err := url.PathUnescape(p); err == nil {
			p = decoded
		}
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return parts, true
}

// Key returns the range of a top-level key.
func Key(src, key string, fb Fallback) Range {
	return Node(src, fb, key)
}

// PathKey returns the range of a path key inside the top-level paths block.
func PathKey(src, path string, fb Fallback) Range {
	return Node(src, fb, "paths", path)
}

// Operation returns the range of the method key of path+method.
func Operation(src, path, method string, fb Fallback) Range {
	return Node(src, fb, "paths", path, strings.ToLower(method))
}

// Token searches the value block of the node at anchor for token.
func (s Scanner) Token(anchor []string, token string, fb Fallback) (Range, Scanner) {
	return s.search(anchor, fb, func(from, to int) (Range, bool) {
		return findToken(s.src, token, from, to)
	})
}

// Field searches the value block at anchor for value written as the value of
// a mapping key named key (e.g. `url: http://a`). The range covers the value.
func (s Scanner) Field(anchor []string, key, value string, fb Fallback) (Range, Scanner) {
	return s.search(anchor, fb, func(from, to int) (Range, bool) {
		return findField(s.src, key, value, from, to)
	})
}

// Key searches the value block at anchor for a mapping key at any depth.
func (s Scanner) Key(anchor []string, key string, fb Fallback) (Range, Scanner) {
	return s.search(anchor, fb, func(from, to int) (Range, bool) {
		return findKey(s.src, key, from, to)
	})
}

// OperationToken searches the body of path+method for token.
func (s Scanner) OperationToken(path, method, token string, fb Fallback) (Range, Scanner) {
	return s.Token([]string{"paths", path, strings.ToLower(method)}, token, fb)
}

// OperationField searches the body of path+method for `key: value`.
func (s Scanner) OperationField(path, method, key, value string, fb Fallback) (Range, Scanner) {
	return s.Field([]string{"paths", path, strings.ToLower(method)}, key, value, fb)
}

// PathToken searches the path item block of path for token.
func (s Scanner) PathToken(path, token string, fb Fallback) (Range, Scanner) {
	return s.Token([]string{"paths", path}, token, fb)
}

// SectionToken searches a top-level section (servers, info, components...) for token.
func (s Scanner) SectionToken(section, token string, fb Fallback) (Range, Scanner) {
	return s.Token([]string{section}, token, fb)
}

// AnyToken searches the whole document from the cursor for token.
func (s Scanner) AnyToken(token string, fb Fallback) (Range, Scanner) {
	return s.Token(nil, token, fb)
}

func (s Scanner) search(anchor []string, fb Fallback, find func(from, to int) (Range, bool)) (r Range, next Scanner) {
	// Heuristics must never take a run down.
	defer func() {
		if recover() != nil {
			r, next = fb.Range(s.src), s
		}
	}()

	b, ok := navigate(s.src, anchor)
	if !ok {
		return fb.Range(s.src), s
	}
	from := max(s.pos, b.start)
	if from >= b.end {
		return fb.Range(s.src), s
	}
	found, ok := find(from, b.end)
	if !ok {
		return fb.Range(s.src), s
	}
	return found, Scanner{src: s.src, pos: found.To}
}

// navigate walks keys from the root block.
func navigate(src string, keys []string) (b block, ok bool) {
	defer func() {
		if recover() != nil {
			b, ok = block{}, false
		}
	}()

	b = rootBlock(src)
	for _, key := range keys {
		if b.isSequence(src) {
			i, err := strconv.Atoi(key)
			if err != nil {
				return block{}, false
			}
			if b, ok = item(src, b, i); !ok {
				return block{}, false
			}
			continue
		}
		if b, ok = child(src, b, key); !ok {
			return block{}, false
		}
	}
	return b, true
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}

// LineCol converts a byte offset into 1-based line and column numbers.
// Columns count bytes. Offsets outside src are clamped.
func LineCol(src string, off int) (line, col int) {
	off = clamp(off, len(src))
	line = strings.Count(src[:off], "\n") + 1
	return line, off - lineStart(src, off) + 1
}
