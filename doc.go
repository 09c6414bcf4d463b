// Package oaslint runs declarative rule catalogs against OpenAPI documents.
//
// oaslint parses an OpenAPI 2.0 or 3.x document (YAML or JSON), binds every
// rule of a catalog to a registered check function, runs the checks
// concurrently against the shared read-only document and reports findings
// with byte ranges into the original text.
//
// # Overview
//
// The library is split into small packages:
//
//   - document: parse OpenAPI text into a read-only node tree
//   - resolver: follow local $ref pointers with cycle detection
//   - locator: map document elements back to byte ranges in the source
//   - rules: load rule catalogs from YAML, JSON or TOML
//   - engine: bind rules to checks and execute them
//   - checks: the built-in check functions
//   - finding: findings, severities and aggregation helpers
//   - baseline: previously published documents for change detection
//
// # Quick Start
//
//	catalog, err := rules.LoadFile("rules.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng, err := engine.New(checks.Registry())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result := eng.Run(ctx, string(raw), catalog)
//	for _, f := range result.Findings {
//	    fmt.Println(f.Location(string(raw)), f)
//	}
//
// # Command-line tool
//
// The oaslint command wraps the engine:
//
//	oaslint lint --rules rules.yaml openapi.yaml
//	oaslint rules rules.yaml
//	oaslint checks
//	oaslint locate openapi.yaml /paths/~1pets/get
//	oaslint mcp
//
// # Error handling
//
// Errors carry typed detail from the oaserrors package and support
// errors.Is against its sentinels. A check that fails never aborts a run;
// it is reported as a critical finding attributed to the rule.
package oaslint
