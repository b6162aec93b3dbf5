// Package pagekit serves file-system routed page applications.
//
// A pages directory is discovered, turned into a route table and served:
//
//	pages/_app.html          app shell wrapping every page
//	pages/404.html           rendered for unknown paths
//	pages/index.html         /
//	pages/blog/[slug].html   /blog/:slug
//	pages/docs/[...rest].html /docs/*
//
// Usage:
//
//	cfg, err := pagekit.LoadProject(ctx, ".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := pagekit.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.Bridge().MustRegister("add", func(a, b int) int { return a + b }, "a", "b")
//	log.Fatal(app.Run(ctx))
//
// A configuration error (malformed brackets, a catch-all that is not last,
// duplicate or ambiguous pages) makes New fail; nothing is served from an
// invalid page tree.
package pagekit
