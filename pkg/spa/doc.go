// Package spa serves a single page application: static assets where a file
// exists, and the index document everywhere else so that client-side routes
// survive reloads and bookmarks.
//
// The index document's <base href="..." /> element is rewritten to the path
// the application is served from, as seen by the client through rewriting
// reverse proxies (X-Forwarded-Prefix and X-Forwarded-Uri).
package spa
