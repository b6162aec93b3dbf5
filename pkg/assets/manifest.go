// Package assets resolves fingerprinted static file names for page templates.
//
// A build step writes a manifest next to the static files. Two shapes are
// understood: a flat map
//
//	{"site.css": "site.e5f6a7b8.css"}
//
// and the Vite manifest, whose entries carry the output file:
//
//	{"src/main.tsx": {"file": "main.a1b2c3d4.js", "isEntry": true}}
//
// Page templates reach the resolver through the "asset" function:
//
//	<link rel="stylesheet" href="{{asset "site.css"}}">
package assets

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// DefaultManifest is the manifest file name looked up in the static directory.
const DefaultManifest = "manifest.json"

// Manifest maps source asset paths to fingerprinted paths.
// It is safe for concurrent use.
type Manifest struct {
	entries map[string]string
	mu      sync.RWMutex
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
	}
}

// Load reads a manifest file from disk.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadFS reads the manifest name from fsys.
func LoadFS(fsys fs.FS, name string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a flat or Vite manifest.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing asset manifest: %w", err)
	}

	m := NewManifest()
	for source, value := range raw {
		var file string
		if err := json.Unmarshal(value, &file); err == nil {
			m.entries[source] = file
			continue
		}
		var chunk struct {
			File string `json:"file"`
		}
		if err := json.Unmarshal(value, &chunk); err != nil || chunk.File == "" {
			return nil, fmt.Errorf("parsing asset manifest: entry %q has no file", source)
		}
		m.entries[source] = chunk.File
	}
	return m, nil
}

// Resolve returns the fingerprinted path for source, or source itself when
// the manifest has no entry.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if resolved, ok := m.entries[source]; ok {
		return resolved
	}
	return source
}

// Has reports whether the manifest contains source.
func (m *Manifest) Has(source string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[source]
	return ok
}

// Set adds or updates an entry.
func (m *Manifest) Set(source, resolved string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[source] = resolved
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
