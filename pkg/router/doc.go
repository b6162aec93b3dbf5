// Package router turns a discovered page tree into a route table and serves
// it over HTTP.
//
// # Patterns
//
// Each routable page's key (its path below the pages root, without the
// extension and a trailing "index" segment) is rewritten segment by segment:
//
//	pages/index.html            → /
//	pages/about.html            → /about
//	pages/blog/index.html       → /blog
//	pages/blog/[slug].html      → /blog/:slug
//	pages/[id]/edit.html        → /:id/edit
//	pages/docs/[...path].html   → /docs/*
//
// A bracket segment must span the whole segment. A catch-all must be the last
// segment and matches one or more trailing path components; its value is
// exposed under the parameter name "*".
//
// # Precedence
//
// Entries keep discovery order, but matching does not depend on it. At every
// segment a static segment is tried before a dynamic one, and a dynamic one
// before a catch-all; a failed branch backtracks. A URL reachable through a
// page with no bracket segments is therefore always served by that page.
// Two pages with the same shape (/blog/:slug and /blog/:id) are rejected when
// the table is built.
//
// # Usage
//
//	d, err := pages.Discover(ctx, pages.NewFSSource(os.DirFS("."), "pages"), pages.Options{})
//	if err != nil {
//	    return err
//	}
//	table, err := router.Build(d)
//	if err != nil {
//	    return err
//	}
//	http.Handle("/", router.New(table))
package router
