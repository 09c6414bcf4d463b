package checks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/internal/naming"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/resolver"
)

var propertyCasing = engine.Check{
	Name:        NamePropertyCasing,
	Description: "Schema property names must follow a casing style",
	Params: []string{
		"casing: camel, pascal, snake or kebab",
		"ignore: property names exempt from the rule",
	},
	Func: checkPropertyCasing,
}

func checkPropertyCasing(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	style, err := casingParam(in, NamePropertyCasing)
	if err != nil {
		return nil, err
	}
	ignore := in.Params().Strings("ignore")

	var out []finding.Finding
	// One finding per (coordinate, message): a property reached through
	// several $ref chains is the same coordinate.
	seen := make(map[string]bool)
	in.Resolver.WalkSchemas(schemaRoots(in), func(e resolver.SchemaEntry) bool {
		if e.Name == "" || slices.Contains(ignore, e.Name) || style.Matches(e.Name) {
			return true
		}
		if n := len(e.Trail); n >= 2 && e.Trail[n-2] == "patternProperties" {
			return true
		}
		msg := fmt.Sprintf("property %q is not %s (suggest %q)", e.Name, style, style.Convert(e.Name))
		key := strings.Join(e.Site, "\x00") + "\x00" + msg
		if e.Site == nil {
			key = "?\x00" + msg
		}
		if seen[key] {
			return true
		}
		seen[key] = true

		r := in.Start()
		if e.Site != nil {
			r = locator.Node(in.Source, locator.FallbackStart, e.Site...)
		} else {
			r, _ = in.Scanner().Key(nil, e.Name, locator.FallbackStart)
		}
		out = append(out, in.Finding(r, msg))
		return true
	})
	return out, nil
}

var parameterCasing = engine.Check{
	Name:        NameParameterCasing,
	Description: "Parameter names must follow a casing style",
	Params: []string{
		"casing: camel, pascal, snake or kebab",
		"in: parameter locations to check (default all)",
	},
	Func: checkParameterCasing,
}

func checkParameterCasing(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	style, err := casingParam(in, NameParameterCasing)
	if err != nil {
		return nil, err
	}
	locations := in.Params().Strings("in")

	var out []finding.Finding
	seen := make(map[string]bool)
	for _, op := range operations(in) {
		for _, p := range parameters(in, op) {
			name := p.name()
			if name == "" || style.Matches(name) {
				continue
			}
			if len(locations) > 0 && !slices.Contains(locations, p.in()) {
				continue
			}
			// Shared parameters are reported where they are defined, once.
			key := strings.Join(p.Site, "\x00") + "\x00" + name
			if seen[key] {
				continue
			}
			seen[key] = true

			r, _ := in.Scanner().Field(p.Site, "name", name, locator.FallbackStart)
			out = append(out, in.Finding(r, fmt.Sprintf("%s parameter %q is not %s (suggest %q)",
				p.in(), name, style, style.Convert(name))))
		}
	}
	return out, nil
}

func casingParam(in *engine.Input, check string) (naming.Style, error) {
	raw := in.Params().StringOr("casing", "")
	if raw == "" {
		return naming.StyleUnknown, missingParam(check, "casing")
	}
	style, ok := naming.ParseStyle(raw)
	if !ok {
		return naming.StyleUnknown, invalidParam(check, "casing", raw, nil)
	}
	return style, nil
}
