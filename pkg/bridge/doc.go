// Package bridge exposes Go functions to the browser.
//
// Every registered function becomes an endpoint taking its arguments as a
// JSON array in the body of a POST request and answering with the JSON
// encoded result:
//
//	reg := bridge.NewRegistry()
//	reg.Register("add", func(a, b int) int { return a + b })
//	http.Handle("/api/", http.StripPrefix("/api", reg.Handler()))
//
//	POST /api/add  [1, 2]  →  3
//
// GenerateTypeScript writes the matching client module, and Client calls the
// endpoints from Go.
package bridge
