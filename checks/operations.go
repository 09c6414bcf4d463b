package checks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/internal/httputil"
	"github.com/erraggy/oaslint/locator"
)

var companionMethods = engine.Check{
	Name:        NameCompanionMethods,
	Description: "Paths exposing a method must also expose its companion methods",
	Params: []string{
		"method: the method that requires companions (e.g. post)",
		"companions: methods every such path must also expose",
	},
	Func: checkCompanionMethods,
}

func checkCompanionMethods(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	params := in.Params()
	method := strings.ToLower(params.StringOr("method", ""))
	if method == "" {
		return nil, missingParam(NameCompanionMethods, "method")
	}
	if !document.IsHTTPMethod(method) {
		return nil, invalidParam(NameCompanionMethods, "method", method, nil)
	}
	companions := params.Strings("companions")
	if len(companions) == 0 {
		return nil, missingParam(NameCompanionMethods, "companions")
	}

	var out []finding.Finding
	for path, item := range in.Document.Paths().Pairs() {
		methods := document.MethodsOf(in.Resolver.Resolve(item))
		if !slices.Contains(methods, method) {
			continue
		}
		var missing []string
		for _, c := range companions {
			if !slices.Contains(methods, strings.ToLower(c)) {
				missing = append(missing, strings.ToUpper(c))
			}
		}
		if len(missing) == 0 {
			continue
		}
		r := locator.PathKey(in.Source, path, locator.FallbackStart)
		out = append(out, in.Finding(r, fmt.Sprintf("%s exposes %s but not %s",
			path, strings.ToUpper(method), strings.Join(missing, ", "))))
	}
	return out, nil
}

var operationFields = engine.Check{
	Name:        NameOperationFields,
	Description: "Every operation must define the listed fields",
	Params:      []string{"fields: required operation fields (e.g. operationId, summary)"},
	Func:        checkOperationFields,
}

func checkOperationFields(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	fields := in.Params().Strings("fields")
	if len(fields) == 0 {
		return nil, missingParam(NameOperationFields, "fields")
	}

	var out []finding.Finding
	for _, op := range operations(in) {
		var missing []string
		for _, f := range fields {
			if v := op.Node.Get(f); v == nil || v.Kind == document.KindNull {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			r := locator.Node(in.Source, locator.FallbackStart, op.Site...)
			out = append(out, in.Finding(r, fmt.Sprintf("%s is missing %s", op.label(), strings.Join(missing, ", "))))
		}
	}
	return out, nil
}

var responseCodes = engine.Check{
	Name:        NameResponseCodes,
	Description: "Operations must declare a success response and the listed status codes",
	Params: []string{
		"required: status codes every operation must declare (e.g. 400, default)",
		"requireSuccess: require at least one 2XX response (default true)",
		"standardOnly: reject numeric codes not registered in RFC 9110 (default false)",
	},
	Func: checkResponseCodes,
}

func checkResponseCodes(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	params := in.Params()
	required := params.Strings("required")
	requireSuccess := params.BoolOr("requireSuccess", true)
	standardOnly := params.BoolOr("standardOnly", false)

	var out []finding.Finding
	for _, op := range operations(in) {
		responses := in.Resolver.Resolve(op.Node.Get("responses"))
		at := locator.Node(in.Source, locator.FallbackStart, op.Site...)
		if responses.Len() == 0 {
			out = append(out, in.Finding(at, op.label()+" declares no responses"))
			continue
		}

		var problems []string
		keys := responses.Keys()
		var invalid, unregistered []string
		for _, code := range keys {
			switch {
			case !httputil.ValidateStatusCode(code):
				invalid = append(invalid, code)
			case standardOnly && httputil.IsNumeric(code) && !httputil.IsStandardStatusCode(code):
				unregistered = append(unregistered, code)
			}
		}
		if len(invalid) > 0 {
			problems = append(problems, "invalid status code "+strings.Join(invalid, ", "))
		}
		if len(unregistered) > 0 {
			problems = append(problems, "unregistered status code "+strings.Join(unregistered, ", "))
		}
		if requireSuccess && !slices.ContainsFunc(keys, httputil.IsSuccess) {
			problems = append(problems, "no 2XX response")
		}
		var missing []string
		for _, code := range required {
			if !slices.ContainsFunc(keys, func(k string) bool { return httputil.Covers(k, code) }) {
				missing = append(missing, code)
			}
		}
		if len(missing) > 0 {
			problems = append(problems, "missing "+strings.Join(missing, ", "))
		}
		if len(problems) == 0 {
			continue
		}
		if r := locator.Node(in.Source, locator.FallbackStart, extend(op.Site, "responses")...); !r.IsEmpty() {
			at = r
		}
		out = append(out, in.Finding(at, fmt.Sprintf("%s: %s", op.label(), strings.Join(problems, "; "))))
	}
	return out, nil
}
