package router

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/pagekit-dev/pagekit/pkg/pages"
	"github.com/pagekit-dev/pagekit/pkg/routepath"
)

// MatchResult is the result of matching a path against the route table.
type MatchResult struct {
	// Entry is the matched route.
	Entry *RouteEntry

	// Params are the extracted parameters; a catch-all is under "*".
	Params map[string]string

	// Path is the canonical request path.
	Path string
}

// compiled is a route table with its match tree. A Router swaps whole
// compiled values, never parts of one.
type compiled struct {
	table *RouteTable
	root  *routeNode
}

func compile(t *RouteTable) *compiled {
	root := newRouteNode("")
	for i := range t.Entries {
		root.insert(&t.Entries[i])
	}
	return &compiled{table: t, root: root}
}

// Router serves a route table over HTTP. It is safe for concurrent use, and
// the table can be replaced while requests are in flight with Swap.
type Router struct {
	current atomic.Pointer[compiled]
	shell   http.Handler
	logger  *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithShell serves every matched route with h instead of rendering the page
// component on the server. Unmatched routes are served with h as well, with a
// 404 status. This is single page application mode: h serves the client
// bundle's index document and the client renders the page.
func WithShell(h http.Handler) Option {
	return func(r *Router) {
		r.shell = h
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// New creates a router serving t.
func New(t *RouteTable, opts ...Option) *Router {
	r := &Router{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.current.Store(compile(t))
	return r
}

// Swap replaces the served table. Requests already matched finish against
// the old table; later requests see only the new one.
func (r *Router) Swap(t *RouteTable) {
	r.current.Store(compile(t))
}

// Table returns the table currently being served.
func (r *Router) Table() *RouteTable {
	return r.current.Load().table
}

// Match finds the entry for path. Invalid paths never match.
func (r *Router) Match(path string) (*MatchResult, bool) {
	res, err := routepath.CanonicalizePath(path)
	if err != nil {
		return nil, false
	}
	return r.match(r.current.Load(), res.Path)
}

func (r *Router) match(c *compiled, canonical string) (*MatchResult, bool) {
	segments, err := routepath.DecodePathSegments(canonical)
	if err != nil {
		return nil, false
	}
	entry, values := c.root.match(segments, nil)
	if entry == nil {
		return nil, false
	}
	return &MatchResult{
		Entry:  entry,
		Params: bind(entry, values),
		Path:   canonical,
	}, true
}

// ServeHTTP implements http.Handler.
//
// Non-canonical paths are redirected to their canonical form with 308 and
// malformed paths are rejected with 400. A matched page is rendered inside
// the app shell with status 200. Anything else renders the not-found page
// inside the app shell with status 404; without a not-found page the shell
// is rendered empty, and without either the body is empty.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	res, err := routepath.CanonicalizePath(req.URL.EscapedPath())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if res.Changed {
		target := res.Path
		if req.URL.RawQuery != "" {
			target += "?" + req.URL.RawQuery
		}
		http.Redirect(w, req, target, http.StatusPermanentRedirect)
		return
	}

	c := r.current.Load()
	m, ok := r.match(c, res.Path)
	if !ok {
		ctx := pages.WithRequest(req.Context(), res.Path, nil)
		if r.shell != nil {
			r.shell.ServeHTTP(&statusWriter{ResponseWriter: w, status: http.StatusNotFound}, req.WithContext(ctx))
			return
		}
		r.render(w, ctx, http.StatusNotFound, c.table.App, c.table.NotFound)
		return
	}

	if info := RouteInfoFrom(req.Context()); info != nil {
		info.Pattern = m.Entry.Pattern
	}
	ctx := pages.WithRequest(req.Context(), res.Path, m.Params)
	if r.shell != nil {
		r.shell.ServeHTTP(w, req.WithContext(ctx))
		return
	}
	r.render(w, ctx, http.StatusOK, c.table.App, m.Entry.Component)
}

func (r *Router) render(w http.ResponseWriter, ctx context.Context, status int, app, page pages.Component) {
	var buf bytes.Buffer
	var err error
	switch {
	case app != nil && page != nil:
		err = app.Render(ctx, &buf, page)
	case app != nil:
		err = app.Render(ctx, &buf)
	case page != nil:
		err = page.Render(ctx, &buf)
	}
	if err != nil {
		r.logger.Error("page render failed", "path", pages.PathFrom(ctx), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// statusWriter replaces the status of a response.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusWriter) WriteHeader(int) {
	if s.wroteHeader {
		return
	}
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(s.status)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	s.WriteHeader(s.status)
	return s.ResponseWriter.Write(b)
}

// Params returns the route parameters of the request being served.
func Params(ctx context.Context) map[string]string {
	return pages.ParamsFrom(ctx)
}

// Param returns a single route parameter, or "" if absent.
func Param(ctx context.Context, name string) string {
	return pages.ParamsFrom(ctx)[name]
}
