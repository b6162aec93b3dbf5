package pages

import (
	"context"
	"sort"
	"sync"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// LoadFunc resolves a page to its default component.
type LoadFunc func(ctx context.Context) (Component, error)

// WalkFunc is called once per file yielded by a Source.
type WalkFunc func(rawPath string, load LoadFunc) error

// Source enumerates a virtual page tree. Walk must yield files in a stable
// order and stop at the first error returned by fn.
type Source interface {
	Walk(ctx context.Context, fn WalkFunc) error
}

// Registry is a Source backed by explicit registration, typically emitted by
// code generation. Files are yielded in registration order.
type Registry struct {
	mu    sync.RWMutex
	files []PageFile
	index map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// NewRegistryFromMap creates a registry from a path to component map. Map
// iteration order is random, so paths are registered in lexical order.
func NewRegistryFromMap(m map[string]Component) *Registry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := NewRegistry()
	for _, k := range keys {
		r.files = append(r.files, PageFile{RawPath: k, Component: m[k]})
		r.index[k] = len(r.files) - 1
	}
	return r
}

// Register adds a page. Registering the same raw path twice is an error.
func (r *Registry) Register(rawPath string, c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.index[rawPath]; dup {
		return errors.New("E203").
			WithPath(rawPath).
			WithDetail("The path is registered more than once.")
	}
	r.files = append(r.files, PageFile{RawPath: rawPath, Component: c})
	r.index[rawPath] = len(r.files) - 1
	return nil
}

// MustRegister is like Register but panics on error. Intended for generated
// code, where a duplicate is a generator bug.
func (r *Registry) MustRegister(rawPath string, c Component) {
	if err := r.Register(rawPath, c); err != nil {
		panic(err)
	}
}

// Len returns the number of registered pages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}

// Walk implements Source.
func (r *Registry) Walk(ctx context.Context, fn WalkFunc) error {
	r.mu.RLock()
	files := make([]PageFile, len(r.files))
	copy(files, r.files)
	r.mu.RUnlock()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := f.Component
		if err := fn(f.RawPath, func(context.Context) (Component, error) { return c, nil }); err != nil {
			return err
		}
	}
	return nil
}
