// Package pages discovers page modules in a virtual file tree.
//
// A page tree is rooted at a pages directory (default /pages). Files are
// partitioned by two sets of glob patterns:
//
//	pages/
//	├── _app.html          → reserved: app shell, wraps every page
//	├── 404.html           → reserved: rendered when no route matches
//	├── index.html         → routable
//	├── blog/
//	│   ├── index.html     → routable
//	│   └── [slug].html    → routable
//	└── docs/
//	    └── [...path].html → routable
//
// Routable files are those whose base name starts with a lowercase letter or
// an opening bracket. Files starting with an underscore or an uppercase letter
// are never routed.
//
// Discovery does not care how pages are loaded. A Source yields raw paths and
// a loader for each; Registry (explicit registration or generated code),
// FSSource (os.DirFS, embed.FS) and S3Source (a bucket prefix) are provided.
// Every matched page is loaded eagerly, so a tree with a broken page never
// produces a Discovery.
//
// # Usage
//
//	src := pages.NewFSSource(os.DirFS("."), "pages")
//	d, err := pages.Discover(ctx, src, pages.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table, err := router.Build(d)
package pages
