// Package naming classifies and converts identifier casing styles.
//
// Checks that enforce a naming convention on schema properties or parameter
// names use Style to test a name and to render a suggested replacement:
//
//	style, ok := naming.ParseStyle("snake_case")
//	if ok && !style.Matches("userName") {
//	    fmt.Println(style.Convert("userName")) // user_name
//	}
//
// Word splitting understands separators (underscore, hyphen, dot, slash,
// space), lower-to-upper transitions and acronym boundaries, so
// "HTTPServerURL" splits into HTTP, Server, URL.
package naming
