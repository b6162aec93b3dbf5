package pages

import (
	"context"
	"io/fs"
	"path"
)

// Loader loads the default component of the file name in fsys.
type Loader func(fsys fs.FS, name string) (Component, error)

// FSSource is a Source over an fs.FS such as os.DirFS or embed.FS. Raw paths
// are the slash-separated fs paths with a leading "/".
type FSSource struct {
	fsys   fs.FS
	dir    string
	loader Loader
}

// FSOption configures an FSSource.
type FSOption func(*FSSource)

// WithLoader sets the loader used for matched files (default TemplateLoader).
func WithLoader(l Loader) FSOption {
	return func(s *FSSource) {
		s.loader = l
	}
}

// NewFSSource returns a Source walking dir inside fsys. Use "." to walk the
// whole file system.
func NewFSSource(fsys fs.FS, dir string, opts ...FSOption) *FSSource {
	s := &FSSource{
		fsys:   fsys,
		dir:    path.Clean(dir),
		loader: TemplateLoader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Walk implements Source. Files are yielded in lexical order.
func (s *FSSource) Walk(ctx context.Context, fn WalkFunc) error {
	return fs.WalkDir(s.fsys, s.dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return fn("/"+name, func(context.Context) (Component, error) {
			return s.loader(s.fsys, name)
		})
	})
}

// RefLoader loads every file as a Ref without reading it.
func RefLoader(_ fs.FS, name string) (Component, error) {
	return Ref{RawPath: "/" + name}, nil
}
