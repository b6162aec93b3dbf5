package spa

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// ForwardedPrefixHeader carries the path prefix a proxy stripped from the
// request.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedURIHeader carries the original request URI, or just its path, as
// seen by the first proxy.
const ForwardedURIHeader = "X-Forwarded-Uri"

// baseRe matches the base element of the index document. The index must stay
// a plain HTML file usable by frontend dev servers, so it is not a template.
var baseRe = regexp.MustCompile(`(<base href=").*?("\s*/?>)`)

// IndexRewriter post-processes the index document after its base element
// has been rewritten.
type IndexRewriter func(r *http.Request, index string) string

// Handler serves files from an fs.FS, falling back to the index document.
type Handler struct {
	fsys     fs.FS
	index    string
	files    http.Handler
	rewriter IndexRewriter
}

// Option configures a Handler.
type Option func(*Handler)

// WithIndexRewriter installs a rewriter applied to every served index.
func WithIndexRewriter(rw IndexRewriter) Option {
	return func(h *Handler) {
		h.rewriter = rw
	}
}

// New returns a handler serving fsys with index (usually "index.html") as
// the fallback document.
//
//	h := spa.New(os.DirFS("dist"), "index.html")
func New(fsys fs.FS, index string, opts ...Option) *Handler {
	h := &Handler{
		fsys:  fsys,
		index: path.Clean("/" + index)[1:],
		files: http.FileServer(http.FS(fsys)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP serves the requested file if it is a regular file, and the
// index document otherwise.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.URL.Path = path.Clean("/" + r.URL.Path)
	if h.serveAsset(w, r) {
		return
	}
	h.serveIndex(w, r)
}

// Index returns a handler that always serves the index document. The router
// uses it for routes it knows belong to the client.
func (h *Handler) Index() http.Handler {
	return http.HandlerFunc(h.serveIndex)
}

// Assets returns a handler that serves only files, answering 404 where
// ServeHTTP would fall back to the index.
func (h *Handler) Assets() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = path.Clean("/" + r.URL.Path)
		if !h.serveAsset(w, r) {
			Error(w, fs.ErrNotExist)
		}
	})
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	// "$" would be taken as a back reference by the replacement.
	base := strings.ReplaceAll(h.basename(r), "$", "")

	f, err := h.fsys.Open(h.index)
	if err != nil {
		Error(w, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		Error(w, err)
		return
	}
	contents, err := io.ReadAll(f)
	if err != nil {
		Error(w, err)
		return
	}

	doc := baseRe.ReplaceAllString(string(contents), "${1}"+base+"${2}")
	if h.rewriter != nil {
		doc = h.rewriter(r, doc)
	}
	http.ServeContent(w, r, "index.html", info.ModTime(), strings.NewReader(doc))
}

// serveAsset serves r.URL.Path if it names a regular file and reports
// whether anything was written. r.URL.Path must be clean.
func (h *Handler) serveAsset(w http.ResponseWriter, r *http.Request) bool {
	name := r.URL.Path[1:]
	if name == "" {
		return false
	}
	info, err := fs.Stat(h.fsys, name)
	if err == nil && info.Mode().IsRegular() {
		h.files.ServeHTTP(w, r)
		return true
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		Error(w, err)
		return true
	}
	return false
}

// originalPath returns the request path as the client sent it to the first
// proxy, or the request path itself without forwarding headers.
func (h *Handler) originalPath(r *http.Request) string {
	if prefix := r.Header.Get(ForwardedPrefixHeader); prefix != "" {
		return path.Join(path.Clean("/"+prefix), r.URL.Path)
	}
	if fwd := r.Header.Get(ForwardedURIHeader); fwd != "" {
		if strings.HasPrefix(fwd, "/") {
			return path.Clean(fwd)
		}
		if u, err := url.Parse(fwd); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return r.URL.Path
}

// basename returns the path the application is served from, always with a
// trailing slash so browsers do not strip the last element.
func (h *Handler) basename(r *http.Request) string {
	reqPath := r.URL.Path
	orig := h.originalPath(r)
	if strings.HasSuffix(reqPath, "/") && !strings.HasSuffix(orig, "/") {
		orig += "/"
	}
	var base string
	if strings.HasSuffix(orig, reqPath) {
		base = orig[:len(orig)-len(reqPath)]
	}
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}

// Error writes a status for err without leaking its details.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "404 page not found", http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "403 Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
	}
}
