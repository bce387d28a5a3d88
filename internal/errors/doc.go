// Package errors provides structured, actionable error messages for the
// tabdeck CLI and server.
//
// Library packages return sentinel and typed errors. At the edge (CLI
// commands, HTTP handlers) they are classified into coded errors that
// carry a category, a detail and a suggestion.
//
// # Error Categories
//
// Errors are organized into categories:
//   - core: reactive runtime, arena and reconciler misuse (E0xx)
//   - config: configuration files (E1xx)
//   - document: loading and creating documents (E2xx)
//   - server: HTTP server, session store and requests (E3xx)
//
// # Usage
//
//	err := errors.New("E201").
//	    WithDetail("Cannot open report.csv").
//	    WithSuggestion("Open a .txt, .bmp, .png, .jpg or .svg file")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E201: Unsupported document type
//	//
//	//   Cannot open report.csv
//	//
//	//   Hint: Open a .txt, .bmp, .png, .jpg or .svg file
package errors
