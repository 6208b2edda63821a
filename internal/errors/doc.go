// Package errors provides structured, actionable error messages for the
// consolenav command.
//
// Router, search and navigator errors are plain typed errors; each exposes a
// stable code through an ErrorCode() string method. This package maps those
// codes to explanations and renders them for the terminal.
//
// # Error Categories
//
//   - construction: route tree build failures (duplicate, orphan, conflict)
//   - navigation: per-navigation failures (no match, redirect loop)
//   - validation: search parameters rejected by a schema
//   - config: configuration file and value errors
//   - cli: command failures
//
// # Usage
//
//	tree, err := console.Tree()
//	if err != nil {
//	    errors.Fprint(os.Stderr, errors.FromError(err, "E310"), errors.StyleText)
//	}
//
//	// Output:
//	// ERROR E201: Duplicate route path
//	//
//	//   Two route descriptors declare the same path, or paths that differ
//	//   only in parameter names.
//	//
//	//   Hint: Remove one of the descriptors or give them distinct static segments.
//	//
//	//   Caused by: duplicate route "/services/:id" (already declared as "/services/:serviceId")
package errors
