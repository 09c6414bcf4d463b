package checks

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/internal/stringutil"
	"github.com/erraggy/oaslint/locator"
)

var pathPattern = engine.Check{
	Name:        NamePathPattern,
	Description: "Path templates must match a pattern",
	Params: []string{
		"pattern: regular expression every path key must match",
		"forbidTrailingSlash: reject paths ending in / other than the root (default false)",
	},
	Func: checkPathPattern,
}

func checkPathPattern(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	params := in.Params()
	var re *regexp.Regexp
	if raw := params.StringOr("pattern", ""); raw != "" {
		var err error
		if re, err = regexp.Compile(raw); err != nil {
			return nil, invalidParam(NamePathPattern, "pattern", raw, err)
		}
	}
	noTrailing := params.BoolOr("forbidTrailingSlash", false)
	if re == nil && !noTrailing {
		return nil, missingParam(NamePathPattern, "pattern")
	}

	var out []finding.Finding
	for _, path := range in.Document.Paths().Keys() {
		var problems []string
		if noTrailing && len(path) > 1 && strings.HasSuffix(path, "/") {
			problems = append(problems, "has a trailing slash")
		}
		if re != nil && !re.MatchString(path) {
			problems = append(problems, "does not match "+re.String())
		}
		if len(problems) > 0 {
			r := locator.PathKey(in.Source, path, locator.FallbackStart)
			out = append(out, in.Finding(r, fmt.Sprintf("path %s %s", path, strings.Join(problems, " and "))))
		}
	}
	return out, nil
}

var versionFormat = engine.Check{
	Name:        NameVersionFormat,
	Description: "The specification version must be a string literal and an allowed version",
	Params: []string{
		"allowed: accepted versions; 3.0 accepts any 3.0.x",
		"requireString: the literal must be a string, not a number (default true)",
	},
	Func: checkVersionFormat,
}

func checkVersionFormat(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	params := in.Params()
	allowed := params.Strings("allowed")
	requireString := params.BoolOr("requireString", true)

	version, node := in.Document.Version()
	if node == nil {
		return []finding.Finding{in.Finding(in.Start(), "no openapi or swagger version declared")}, nil
	}
	key := "openapi"
	if in.Document.IsOAS2() {
		key = "swagger"
	}
	r, _ := in.Scanner().Field(nil, key, version, locator.FallbackStart)
	if r.IsEmpty() {
		r = locator.Key(in.Source, key, locator.FallbackStart)
	}

	var out []finding.Finding
	if requireString && node.Scalar != document.ScalarString {
		out = append(out, in.Finding(r, fmt.Sprintf("%s version %s must be a string, not %s", key, version, node.Scalar)))
	}
	if len(allowed) > 0 && !slices.ContainsFunc(allowed, func(a string) bool { return versionAllowed(a, version) }) {
		out = append(out, in.Finding(r, fmt.Sprintf("%s version %s is not one of %s", key, version, strings.Join(allowed, ", "))))
	}
	return out, nil
}

// versionAllowed matches exactly, or treats a two-part entry as a prefix.
func versionAllowed(allowed, version string) bool {
	if allowed == version {
		return true
	}
	return strings.Count(allowed, ".") == 1 && strings.HasPrefix(version, allowed+".")
}

var fieldPresent = engine.Check{
	Name:        NameFieldPresent,
	Description: "A dotted field path must be present (e.g. info.contact.email)",
	Params: []string{
		"field: dotted path from the document root",
		"format: the value must also be a valid email or url",
	},
	Func: checkFieldPresent,
}

var fieldFormats = map[string]func(string) bool{
	"email": stringutil.IsValidEmail,
	"url":   stringutil.IsValidURL,
}

func checkFieldPresent(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	params := in.Params()
	field := params.StringOr("field", "")
	if field == "" {
		return nil, missingParam(NameFieldPresent, "field")
	}
	format := params.StringOr("format", "")
	valid, ok := fieldFormats[format]
	if format != "" && !ok {
		return nil, invalidParam(NameFieldPresent, "format", format, nil)
	}
	keys := strings.Split(field, ".")

	// Point at the deepest ancestor that exists.
	depth := 0
	cur := in.Document.Root
	for _, k := range keys {
		next := in.Resolver.Resolve(cur.Get(k))
		if next == nil {
			break
		}
		cur = next
		depth++
	}
	if depth == len(keys) && cur.Kind != document.KindNull {
		s, isStr := cur.Str()
		switch {
		case isStr && s == "":
			// empty strings count as missing
		case valid == nil:
			return nil, nil
		case isStr && valid(s):
			return nil, nil
		default:
			last := len(keys) - 1
			r, _ := in.Scanner().Field(keys[:last], keys[last], cur.String(), locator.FallbackStart)
			if r.IsEmpty() {
				r = locator.Node(in.Source, locator.FallbackStart, keys...)
			}
			return []finding.Finding{in.Finding(r, fmt.Sprintf("%s %q is not a valid %s", field, cur.String(), format))}, nil
		}
	}
	r := in.Start()
	if depth > 0 {
		r = locator.Node(in.Source, locator.FallbackStart, keys[:depth]...)
	}
	return []finding.Finding{in.Finding(r, field+" is missing")}, nil
}
