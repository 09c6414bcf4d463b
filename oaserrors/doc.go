// Package oaserrors provides structured error types for the oaslint library.
//
// Import path: github.com/erraggy/oaslint/oaserrors
//
// The types map onto the failure taxonomy of a validation run and support
// [errors.Is] and [errors.As], so callers can tell a document that could not
// be parsed apart from a single misbehaving check.
//
// # Error Types
//
//   - [ParseError]: the raw text is not a well-formed YAML/JSON document
//   - [ReferenceError]: a $ref could not be resolved (dangling or circular)
//   - [RuleExecutionError]: a check returned an error or panicked
//   - [FetchError]: a comparison document could not be fetched
//   - [ConfigError]: invalid configuration, options, or rule catalog
//
// # Sentinel Errors
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrCircularReference]: Matches [ReferenceError] with IsCircular=true
//   - [ErrRuleExecution]: Matches any [RuleExecutionError]
//   - [ErrCheckPanic]: Matches [RuleExecutionError] with Panicked=true
//   - [ErrFetch]: Matches any [FetchError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage Examples
//
//	doc, err := document.Parse(text)
//	if errors.Is(err, oaserrors.ErrParse) {
//	    // report one whole-document finding
//	}
//
//	var execErr *oaserrors.RuleExecutionError
//	if errors.As(err, &execErr) {
//	    fmt.Printf("check %s failed for rule %s\n", execErr.Check, execErr.RuleID)
//	}
//
// Only [ParseError] is allowed to short-circuit a run. The engine converts
// [RuleExecutionError] into a synthetic finding and treats [FetchError] as
// "rule not applicable". [ReferenceError] never escapes the resolver; it is
// produced by checks that report dangling references as findings.
package oaserrors
