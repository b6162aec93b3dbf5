package pages

import (
	"path"
	"strings"
)

const (
	// DefaultRoot is the default pages directory.
	DefaultRoot = "/pages"

	// DefaultExt is the default page file extension.
	DefaultExt = ".html"

	// AppSlot is the base name of the app shell page.
	AppSlot = "_app"

	// NotFoundSlot is the base name of the not-found page.
	NotFoundSlot = "404"
)

// Options configures discovery.
type Options struct {
	// Root is the pages directory in the virtual tree (default "/pages").
	Root string

	// Ext is the page file extension including the dot (default ".html").
	Ext string

	// ReservedPatterns select the app shell and not-found pages. Patterns are
	// doublestar globs relative to Root. Default: {_app,404}<Ext>.
	ReservedPatterns []string

	// RoutePatterns select routable pages, relative to Root. Default:
	// **/[a-z]*<Ext> and **/\[*<Ext>.
	RoutePatterns []string
}

// WithDefaults returns a copy of o with empty fields set to defaults and Root
// normalised to a rooted path without a trailing slash.
func (o Options) WithDefaults() Options {
	if o.Root == "" {
		o.Root = DefaultRoot
	}
	o.Root = path.Clean("/" + o.Root)
	if o.Ext == "" {
		o.Ext = DefaultExt
	}
	ext := escapeGlob(o.Ext)
	if len(o.ReservedPatterns) == 0 {
		o.ReservedPatterns = []string{"{" + AppSlot + "," + NotFoundSlot + "}" + ext}
	}
	if len(o.RoutePatterns) == 0 {
		o.RoutePatterns = []string{
			"**/[a-z]*" + ext,
			`**/\[*` + ext,
		}
	}
	return o
}

// Rel returns rawPath relative to the root, and false when rawPath is not
// below the root.
func (o Options) Rel(rawPath string) (string, bool) {
	root := o.Root
	if root == "/" {
		rel := strings.TrimPrefix(rawPath, "/")
		return rel, rel != "" && rel != rawPath
	}
	if !strings.HasPrefix(rawPath, root+"/") {
		return "", false
	}
	rel := rawPath[len(root)+1:]
	return rel, rel != ""
}

// NormalizeKey converts a raw page path into its route key: the path relative
// to the root with the extension and an exact trailing "index" segment
// stripped. "/pages/blog/index.html" becomes "blog", "/pages/index.html"
// becomes "".
func NormalizeKey(rawPath string, o Options) (string, bool) {
	rel, ok := o.Rel(rawPath)
	if !ok {
		return "", false
	}
	key := strings.TrimSuffix(rel, o.Ext)
	if key == "index" {
		return "", true
	}
	return strings.TrimSuffix(key, "/index"), true
}

// BaseName returns the file name of rawPath without directory and extension.
func BaseName(rawPath, ext string) string {
	return strings.TrimSuffix(path.Base(rawPath), ext)
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
