package locator

import "strings"

// block is the textual extent of one node's value.
type block struct {
	// keyFrom, keyTo delimit the key (or the first line of a sequence item)
	keyFrom, keyTo int
	// start, end delimit the value text
	start, end int
	// col is the indentation column that owns the block in YAML; -1 for the root
	col int
	// flow is true when the value is a JSON or YAML flow collection at start
	flow bool
	// item is true for YAML block sequence items
	item bool
}

func rootBlock(src string) block {
	i := skipWS(src, 0, len(src))
	if i < len(src) && (src[i] == '{' || src[i] == '[') {
		return block{start: i, end: matchBracket(src, i), col: -1, flow: true}
	}
	return block{start: 0, end: len(src), col: -1}
}

// isSequence reports whether the block's value is a sequence.
func (b block) isSequence(src string) bool {
	if b.flow {
		return b.start < len(src) && src[b.start] == '['
	}
	cs, _, ok := firstContent(src, b.start, b.end)
	return ok && isSeqDash(src, cs, lineEnd(src, cs))
}

// child finds the direct child key of a mapping block.
func child(src string, b block, key string) (block, bool) {
	if b.flow {
		return flowChild(src, b, key)
	}
	return yamlChild(src, b, key)
}

// item finds the i-th element of a sequence block.
func item(src string, b block, i int) (block, bool) {
	if i < 0 {
		return block{}, false
	}
	if b.flow {
		return flowItem(src, b, i)
	}
	return yamlItem(src, b, i)
}

func yamlChild(src string, b block, key string) (block, bool) {
	col := -1
	for pos := b.start; pos < b.end; {
		ls := lineStart(src, pos)
		le := min(lineEnd(src, pos), b.end)
		cs := skipSpaces(src, pos, le)
		if cs < le && src[cs] != '#' {
			c := cs - ls
			if col == -1 {
				col = c
			}
			switch {
			case c < col:
				return block{}, false
			case c == col:
				if isSeqDash(src, cs, le) {
					return block{}, false
				}
				if k, kr, colon, ok := parseYAMLKey(src, cs, le); ok && k == key {
					return valueBlock(src, kr, colon, c, false), true
				}
			}
		}
		pos = le + 1
	}
	return block{}, false
}

func yamlItem(src string, b block, want int) (block, bool) {
	col := -1
	n := 0
	for pos := b.start; pos < b.end; {
		ls := lineStart(src, pos)
		le := min(lineEnd(src, pos), b.end)
		cs := skipSpaces(src, pos, le)
		if cs < le && src[cs] != '#' {
			c := cs - ls
			if col == -1 {
				col = c
			}
			if c < col {
				return block{}, false
			}
			if c == col {
				if !isSeqDash(src, cs, le) {
					return block{}, false
				}
				if n == want {
					content := skipSpaces(src, cs+1, le)
					nb := block{
						keyFrom: cs,
						keyTo:   trimRightSpace(src, cs, le),
						start:   content,
						end:     yamlItemEnd(src, le+1, c),
						col:     c,
						item:    true,
					}
					if content < le && (src[content] == '{' || src[content] == '[') {
						nb.flow = true
						nb.end = matchBracket(src, content)
					}
					return nb, true
				}
				n++
			}
		}
		pos = le + 1
	}
	return block{}, false
}

func flowChild(src string, b block, key string) (block, bool) {
	if b.start >= len(src) || src[b.start] != '{' {
		return block{}, false
	}
	depth := 0
	expectKey := false
	for i := b.start; i < b.end; {
		c := src[i]
		switch {
		case c == '"' || c == '\'':
			se := stringEnd(src, i, b.end)
			if depth == 1 && expectKey {
				j := skipWS(src, se, b.end)
				if j < b.end && src[j] == ':' && se-1 > i && src[i+1:se-1] == key {
					return valueBlock(src, Range{From: i + 1, To: se - 1}, j, -1, true), true
				}
			}
			i = se
			continue
		case c == '{' || c == '[':
			depth++
			if depth == 1 {
				expectKey = c == '{'
			}
		case c == '}' || c == ']':
			depth--
			if depth <= 0 {
				return block{}, false
			}
		case depth == 1 && c == ',':
			expectKey = true
		case depth == 1 && c == ':':
			expectKey = false
		case depth == 1 && expectKey && !isSpace(c):
			j := i
			for j < b.end && !strings.ContainsRune(":,{}[]\n", rune(src[j])) {
				j++
			}
			tok := strings.TrimRight(src[i:j], " \t\r")
			if j < b.end && src[j] == ':' && tok == key {
				return valueBlock(src, Range{From: i, To: i + len(tok)}, j, -1, true), true
			}
			i = j
			continue
		}
		i++
	}
	return block{}, false
}

func flowItem(src string, b block, want int) (block, bool) {
	if b.start >= len(src) || src[b.start] != '[' {
		return block{}, false
	}
	n := 0
	i := skipWS(src, b.start+1, b.end)
	for i < b.end && src[i] != ']' {
		end := max(flowValueEnd(src, i, b.end), i+1)
		if n == want {
			nb := block{
				keyFrom: i,
				keyTo:   trimRightSpace(src, i, min(end, lineEnd(src, i))),
				start:   i,
				end:     end,
				col:     -1,
				flow:    src[i] == '{' || src[i] == '[',
			}
			return nb, true
		}
		n++
		i = skipWS(src, end, b.end)
		if i < b.end && src[i] == ',' {
			i = skipWS(src, i+1, b.end)
		}
	}
	return block{}, false
}

// valueBlock computes the extent of the value following the colon at colon.
func valueBlock(src string, key Range, colon, col int, flowCtx bool) block {
	start := colon + 1
	var i int
	if flowCtx {
		i = skipWS(src, start, len(src))
	} else {
		le := lineEnd(src, start)
		i = skipSpaces(src, start, le)
		// Anchors and tags precede the value proper.
		for i < le && (src[i] == '&' || src[i] == '!') {
			for i < le && !isSpace(src[i]) {
				i++
			}
			i = skipSpaces(src, i, le)
		}
		if i == le || src[i] == '#' {
			start = le
		}
	}
	nb := block{keyFrom: key.From, keyTo: key.To, col: col}
	if i < len(src) && (src[i] == '{' || src[i] == '[') {
		nb.start, nb.end, nb.flow = i, matchBracket(src, i), true
		return nb
	}
	if flowCtx {
		nb.start, nb.end = i, flowValueEnd(src, i, len(src))
		return nb
	}
	nb.start, nb.end = start, yamlBlockEnd(src, lineEnd(src, start)+1, col)
	return nb
}

// yamlBlockEnd returns the start of the first line at or after pos that is
// indented at most col, ignoring sequence dashes at exactly col (YAML allows
// a block sequence at its parent key's indentation).
func yamlBlockEnd(src string, pos, col int) int {
	for pos < len(src) {
		le := lineEnd(src, pos)
		cs := skipSpaces(src, pos, le)
		if cs < le && src[cs] != '#' {
			c := cs - pos
			if c < col || (c == col && !isSeqDash(src, cs, le)) {
				return pos
			}
		}
		pos = le + 1
	}
	return len(src)
}

// yamlItemEnd returns the start of the first line at or after pos indented at
// most col.
func yamlItemEnd(src string, pos, col int) int {
	for pos < len(src) {
		le := lineEnd(src, pos)
		cs := skipSpaces(src, pos, le)
		if cs < le && src[cs] != '#' && cs-pos <= col {
			return pos
		}
		pos = le + 1
	}
	return len(src)
}

// parseYAMLKey parses a block mapping key starting at cs. It returns the key
// text, its range (quotes excluded), and the offset of the colon.
func parseYAMLKey(src string, cs, le int) (string, Range, int, bool) {
	if q := src[cs]; q == '"' || q == '\'' {
		end := stringEnd(src, cs, le)
		if end <= cs+1 || src[end-1] != q {
			return "", Range{}, 0, false
		}
		j := skipSpaces(src, end, le)
		if j >= le || src[j] != ':' {
			return "", Range{}, 0, false
		}
		return src[cs+1 : end-1], Range{From: cs + 1, To: end - 1}, j, true
	}
	for j := cs; j < le; j++ {
		if src[j] != ':' {
			continue
		}
		if j+1 == le || src[j+1] == ' ' || src[j+1] == '\t' || src[j+1] == '\r' {
			to := trimRightSpace(src, cs, j)
			if to == cs {
				return "", Range{}, 0, false
			}
			return src[cs:to], Range{From: cs, To: to}, j, true
		}
	}
	return "", Range{}, 0, false
}

// firstContent returns the first non-blank, non-comment offset in [from,to)
// and its column.
func firstContent(src string, from, to int) (int, int, bool) {
	for pos := from; pos < to; {
		le := min(lineEnd(src, pos), to)
		cs := skipSpaces(src, pos, le)
		if cs < le && src[cs] != '#' {
			return cs, cs - lineStart(src, cs), true
		}
		pos = le + 1
	}
	return 0, 0, false
}

// matchBracket returns the offset just past the bracket matching src[i].
// Unbalanced input extends to the end of src.
func matchBracket(src string, i int) int {
	depth := 0
	for j := i; j < len(src); {
		switch src[j] {
		case '"', '\'':
			j = stringEnd(src, j, len(src))
			continue
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
		j++
	}
	return len(src)
}

// flowValueEnd returns the end of a flow value starting at i: a bracketed
// collection, a quoted string, or a bare scalar up to ',', '}', ']' or newline.
func flowValueEnd(src string, i, limit int) int {
	if i >= limit {
		return limit
	}
	switch src[i] {
	case '{', '[':
		return matchBracket(src, i)
	case '"', '\'':
		return stringEnd(src, i, limit)
	}
	j := i
	for j < limit && !strings.ContainsRune(",}]\n", rune(src[j])) {
		j++
	}
	return trimRightSpace(src, i, j)
}

// stringEnd returns the offset just past the quoted string starting at i.
func stringEnd(src string, i, limit int) int {
	q := src[i]
	for j := i + 1; j < limit; j++ {
		switch {
		case q == '"' && src[j] == '\\':
			j++
		case src[j] == q:
			if q == '\'' && j+1 < limit && src[j+1] == '\'' {
				j++
				continue
			}
			return j + 1
		}
	}
	return limit
}

func isSeqDash(src string, cs, le int) bool {
	return src[cs] == '-' && (cs+1 == le || src[cs+1] == ' ' || src[cs+1] == '\t' || src[cs+1] == '\r')
}

func lineStart(src string, pos int) int {
	return strings.LastIndexByte(src[:pos], '\n') + 1
}

func lineEnd(src string, pos int) int {
	if pos >= len(src) {
		return len(src)
	}
	if i := strings.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(src)
}

func skipSpaces(src string, i, limit int) int {
	for i < limit && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i
}

func skipWS(src string, i, limit int) int {
	for i < limit && isSpace(src[i]) {
		i++
	}
	return i
}

func trimRightSpace(src string, from, to int) int {
	for to > from && isSpace(src[to-1]) {
		to--
	}
	return to
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
