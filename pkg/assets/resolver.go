package assets

import (
	"html/template"
	"io/fs"
	"strings"
)

// Resolver maps a source asset path to its URL path.
type Resolver interface {
	Asset(source string) string
}

type manifestResolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver returns a Resolver looking names up in m and prepending prefix.
//
//	r := assets.NewResolver(m, "/assets")
//	r.Asset("site.css") // "/assets/site.e5f6a7b8.css"
func NewResolver(m *Manifest, prefix string) Resolver {
	return &manifestResolver{manifest: m, prefix: joinPrefix(prefix)}
}

func (r *manifestResolver) Asset(source string) string {
	return r.prefix + strings.TrimPrefix(r.manifest.Resolve(source), "/")
}

type passthrough struct {
	prefix string
}

// NewPassthroughResolver returns a Resolver that only prepends prefix, for
// static directories without a manifest.
func NewPassthroughResolver(prefix string) Resolver {
	return &passthrough{prefix: joinPrefix(prefix)}
}

func (p *passthrough) Asset(source string) string {
	return p.prefix + strings.TrimPrefix(source, "/")
}

// ForStatic returns a manifest Resolver when fsys holds the manifest name,
// otherwise a passthrough Resolver. A nil fsys yields a passthrough.
func ForStatic(fsys fs.FS, name, prefix string) (Resolver, error) {
	if fsys == nil {
		return NewPassthroughResolver(prefix), nil
	}
	if name == "" {
		name = DefaultManifest
	}
	if _, err := fs.Stat(fsys, name); err != nil {
		return NewPassthroughResolver(prefix), nil
	}
	m, err := LoadFS(fsys, name)
	if err != nil {
		return nil, err
	}
	return NewResolver(m, prefix), nil
}

// FuncMap exposes r to page templates as "asset".
func FuncMap(r Resolver) template.FuncMap {
	return template.FuncMap{"asset": r.Asset}
}

// joinPrefix ends a non-empty prefix with exactly one slash.
func joinPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimSuffix(prefix, "/") + "/"
}
