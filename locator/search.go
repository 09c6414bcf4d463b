package locator

import "strings"

// findToken returns the first occurrence of token in [from,to). An unquoted,
// word-bounded occurrence wins; otherwise the first quoted one ("token" or
// 'token') is used, with the quotes excluded from the range.
func findToken(src, token string, from, to int) (Range, bool) {
	return scan(src, token, from, to, func(s, e int, quoted bool) bool { return true })
}

// findField is findToken restricted to occurrences that are the value of a
// mapping key named key.
func findField(src, key, value string, from, to int) (Range, bool) {
	return scan(src, value, from, to, func(s, e int, quoted bool) bool {
		if quoted {
			s--
		}
		return precededByKey(src, key, s)
	})
}

// findKey returns the first occurrence of key used as a mapping key.
func findKey(src, key string, from, to int) (Range, bool) {
	return scan(src, key, from, to, func(s, e int, quoted bool) bool {
		if quoted {
			e++
		}
		j := skipSpaces(src, e, len(src))
		return j < len(src) && src[j] == ':'
	})
}

// scan drives the unquoted-then-quoted preference shared by all leaf
// searches. accept filters candidate occurrences [s,e).
func scan(src, token string, from, to int, accept func(s, e int, quoted bool) bool) (Range, bool) {
	if token == "" || from < 0 || to > len(src) || from >= to {
		return Range{}, false
	}
	quoted := Range{From: -1}
	for off := from; off < to; {
		idx := strings.Index(src[off:to], token)
		if idx < 0 {
			break
		}
		s := off + idx
		e := s + len(token)
		off = s + 1

		before, after := byteAt(src, s-1), byteAt(src, e)
		switch {
		case isQuote(before) && after == before:
			if quoted.From < 0 && accept(s, e, true) {
				quoted = Range{From: s, To: e}
			}
		case isQuote(before) || isQuote(after):
		case bounded(token, before, after):
			if accept(s, e, false) {
				return Range{From: s, To: e}, true
			}
		}
	}
	if quoted.From >= 0 {
		return quoted, true
	}
	return Range{}, false
}

// precededByKey reports whether the text before offset s reads `key:`,
// allowing a quoted key and spaces around the colon.
func precededByKey(src, key string, s int) bool {
	j := s - 1
	for j >= 0 && (src[j] == ' ' || src[j] == '\t') {
		j--
	}
	if j < 0 || src[j] != ':' {
		return false
	}
	j--
	for j >= 0 && (src[j] == ' ' || src[j] == '\t') {
		j--
	}
	if j < 0 {
		return false
	}
	if q := src[j]; isQuote(q) {
		ks := j - len(key)
		return ks >= 1 && src[ks:j] == key && src[ks-1] == q
	}
	ks := j + 1 - len(key)
	if ks < 0 || src[ks:j+1] != key {
		return false
	}
	return !isTokenChar(byteAt(src, ks-1))
}

// bounded applies word boundaries on the edges of token that are themselves
// token characters.
func bounded(token string, before, after byte) bool {
	if isTokenChar(token[0]) && isTokenChar(before) {
		return false
	}
	if isTokenChar(token[len(token)-1]) && isTokenChar(after) {
		return false
	}
	return true
}

func byteAt(src string, i int) byte {
	if i < 0 || i >= len(src) {
		return 0
	}
	return src[i]
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == '.' || c == '/':
		return true
	}
	return false
}
