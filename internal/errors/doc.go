// Package errors provides structured, actionable error messages for pagekit.
//
// Every error carries a code (e.g. "E202") that maps to a short message, a
// longer explanation and a documentation URL. Route configuration errors also
// carry the offending page path so that startup can abort with a message that
// points at the file to fix.
//
// # Error Categories
//
//   - route: malformed page file names, duplicate or ambiguous routes
//   - config: pagekit.json problems
//   - bridge: function registration and invocation problems
//   - cli: command line usage problems
//
// # Usage
//
//	err := errors.New("E202").
//	    WithPath("/pages/[...slug]/extra.html").
//	    WithSuggestion("Move the catch-all segment to the end of the path")
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR E202: Catch-all segment is not in final position
//	//
//	//   /pages/[...slug]/extra.html
//	//
//	//   Hint: Move the catch-all segment to the end of the path
package errors
