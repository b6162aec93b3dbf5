package spa

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var testFS = os.DirFS("testdata")

func request(path string, header http.Header) *http.Request {
	return &http.Request{
		Method: http.MethodGet,
		URL:    Successful(url.Parse("http://example.org:8080" + path)),
		Header: header,
	}
}

func baseHref(body string) string {
	doc := Successful(goquery.NewDocumentFromReader(strings.NewReader(body)))
	base := doc.Find("base")
	Expect(base.Length()).To(Equal(1), "<base> element lost")
	href, _ := base.First().Attr("href")
	return href
}

var _ = Describe("single page application handler", func() {

	DescribeTable("determines the original request path",
		func(path string, header http.Header, expected string) {
			h := New(testFS, "index.html")
			Expect(h.originalPath(request(path, header))).To(Equal(expected))
		},
		Entry("no proxy headers", "/some/path", nil, "/some/path"),
		Entry("prefix /", "/", http.Header{ForwardedPrefixHeader: {"/"}}, "/"),
		Entry("prefix /app at root", "/", http.Header{ForwardedPrefixHeader: {"/app"}}, "/app"),
		Entry("prefix /app", "/foo", http.Header{ForwardedPrefixHeader: {"/app"}}, "/app/foo"),
		Entry("empty forwarded uri", "/", http.Header{ForwardedURIHeader: {""}}, "/"),
		Entry("path-only forwarded uri", "/", http.Header{ForwardedURIHeader: {"/app"}}, "/app"),
		Entry("absolute forwarded uri", "/", http.Header{ForwardedURIHeader: {"http://example.org/app/"}}, "/app"),
	)

	DescribeTable("determines the base path",
		func(path string, header http.Header, expected string) {
			h := New(testFS, "index.html")
			Expect(h.basename(request(path, header))).To(Equal(expected))
		},
		Entry("root", "/", nil, "/"),
		Entry("deep path without headers", "/foo/bar", nil, "/"),
		Entry("prefix /app", "/", http.Header{ForwardedPrefixHeader: {"/app"}}, "/app/"),
		Entry("prefix /app with trailing slash", "/foo/bar", http.Header{ForwardedPrefixHeader: {"/app/"}}, "/app/"),
		Entry("empty prefix", "/foo/bar", http.Header{ForwardedPrefixHeader: {""}}, "/"),
	)

	DescribeTable("serves assets or the index",
		func(path string, status int, canary string) {
			w := httptest.NewRecorder()
			New(testFS, "index.html").ServeHTTP(w, request(path, nil))
			Expect(w.Code).To(Equal(status))
			Expect(w.Body.String()).To(ContainSubstring(canary))
		},
		Entry("asset", "/static/js/app.js", http.StatusOK, "CANARY JS"),
		Entry("client route", "/users/42", http.StatusOK, "<div id=\"root\">"),
		Entry("directory", "/static", http.StatusOK, "<div id=\"root\">"),
		Entry("missing asset", "/static/js/missing.js", http.StatusOK, "<div id=\"root\">"),
		Entry("traversal", "/../static/js/app.js", http.StatusOK, "CANARY JS"),
	)

	It("rewrites the base element behind a proxy", func() {
		w := httptest.NewRecorder()
		New(testFS, "index.html").ServeHTTP(w, request("/users/42", http.Header{
			ForwardedPrefixHeader: {"/app"},
		}))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(baseHref(w.Body.String())).To(Equal("/app/"))
	})

	It("applies the index rewriter", func() {
		const canary = "<!-- injected -->"
		h := New(testFS, "index.html", WithIndexRewriter(func(_ *http.Request, index string) string {
			return strings.Replace(index, "</body>", canary+"</body>", 1)
		}))
		w := httptest.NewRecorder()
		h.Index().ServeHTTP(w, request("/anything", nil))
		Expect(w.Body.String()).To(ContainSubstring(canary))
		Expect(baseHref(w.Body.String())).To(Equal("/"))
	})

	It("serves only files from Assets", func() {
		h := New(testFS, "index.html").Assets()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, request("/icon.png", nil))
		Expect(w.Code).To(Equal(http.StatusOK))

		w = httptest.NewRecorder()
		h.ServeHTTP(w, request("/nope.png", nil))
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("answers 404 when the index is missing", func() {
		w := httptest.NewRecorder()
		New(testFS, "missing.html").ServeHTTP(w, request("/", nil))
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	DescribeTable("serves from different fs.FS implementations",
		func(fsys fs.FS) {
			w := httptest.NewRecorder()
			New(fsys, "index.html").ServeHTTP(w, request("/icon.png", nil))
			Expect(w.Code).To(Equal(http.StatusOK))
		},
		Entry("os.DirFS", testFS),
		Entry("fstest.MapFS", fstest.MapFS{
			"index.html": {Data: []byte(`<base href="/" />`)},
			"icon.png":   {Data: []byte("PNG")},
		}),
	)

	DescribeTable("normalizes errors",
		func(err error, status int) {
			w := httptest.NewRecorder()
			Error(w, err)
			Expect(w.Code).To(Equal(status))
		},
		Entry("not found", fs.ErrNotExist, http.StatusNotFound),
		Entry("permission", fs.ErrPermission, http.StatusForbidden),
		Entry("other", fs.ErrClosed, http.StatusInternalServerError),
	)
})
