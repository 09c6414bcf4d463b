package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Style is an identifier casing convention.
type Style int

const (
	// StyleUnknown is the zero value and matches nothing.
	StyleUnknown Style = iota
	// StyleCamel is camelCase.
	StyleCamel
	// StylePascal is PascalCase.
	StylePascal
	// StyleSnake is snake_case.
	StyleSnake
	// StyleKebab is kebab-case.
	StyleKebab
)

var patterns = map[Style]*regexp.Regexp{
	StyleCamel:  regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`),
	StylePascal: regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`),
	StyleSnake:  regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`),
	StyleKebab:  regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`),
}

// ParseStyle accepts the usual spellings of a style: "camel", "camelCase",
// "snake_case", "kebab-case", "PascalCase" and so on, case-insensitively.
func ParseStyle(s string) (Style, bool) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	key = strings.TrimSuffix(key, "case")
	switch key {
	case "camel", "lowercamel":
		return StyleCamel, true
	case "pascal", "uppercamel":
		return StylePascal, true
	case "snake":
		return StyleSnake, true
	case "kebab", "spinal", "dash":
		return StyleKebab, true
	default:
		return StyleUnknown, false
	}
}

// String returns the canonical spelling of the style.
func (s Style) String() string {
	switch s {
	case StyleCamel:
		return "camelCase"
	case StylePascal:
		return "PascalCase"
	case StyleSnake:
		return "snake_case"
	case StyleKebab:
		return "kebab-case"
	default:
		return "unknown"
	}
}

// Matches reports whether name is written in the style.
func (s Style) Matches(name string) bool {
	re, ok := patterns[s]
	return ok && re.MatchString(name)
}

// Convert rewrites name in the style. Unknown styles return name unchanged.
func (s Style) Convert(name string) string {
	words := Words(name)
	if len(words) == 0 {
		return name
	}
	// Casers keep state and are not shared between goroutines.
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)

	switch s {
	case StyleCamel, StylePascal:
		var b strings.Builder
		for i, w := range words {
			if i == 0 && s == StyleCamel {
				b.WriteString(lower.String(w))
				continue
			}
			b.WriteString(title.String(w))
		}
		return b.String()
	case StyleSnake, StyleKebab:
		sep := "_"
		if s == StyleKebab {
			sep = "-"
		}
		for i, w := range words {
			words[i] = lower.String(w)
		}
		return strings.Join(words, sep)
	default:
		return name
	}
}

// Words splits an identifier into its words.
func Words(s string) []string {
	var words []string
	runes := []rune(s)
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if isSeparator(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			// userName -> user|Name, v2Client -> v2|Client
			flush(i)
			start = i
		case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// HTTPServer -> HTTP|Server
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}

func isSeparator(r rune) bool {
	switch r {
	case '_', '-', '.', '/', ' ':
		return true
	}
	return false
}
