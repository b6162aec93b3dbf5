package assets

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestManifestResolve(t *testing.T) {
	m := NewManifest()
	m.Set("site.js", "site.abc123.min.js")
	m.Set("site.css", "site.def456.css")

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"found entry", "site.js", "site.abc123.min.js"},
		{"found entry css", "site.css", "site.def456.css"},
		{"missing entry returns original", "unknown.js", "unknown.js"},
		{"empty string returns empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Resolve(tt.source)
			if got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.source, got, tt.expected)
			}
		})
	}
}

func TestManifestHasAndLen(t *testing.T) {
	m := NewManifest()
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	m.Set("site.js", "site.abc123.min.js")

	if !m.Has("site.js") {
		t.Error("Has(site.js) = false, want true")
	}
	if m.Has("unknown.js") {
		t.Error("Has(unknown.js) = true, want false")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestParseFlat(t *testing.T) {
	m, err := Parse([]byte(`{"site.js": "site.abc123.min.js", "site.css": "site.def456.css"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := m.Resolve("site.css"); got != "site.def456.css" {
		t.Errorf("Resolve(site.css) = %q", got)
	}
}

func TestParseVite(t *testing.T) {
	m, err := Parse([]byte(`{
  "src/main.tsx": {"file": "main.a1b2c3d4.js", "isEntry": true, "css": ["main.0f0f0f0f.css"]},
  "logo.svg": "logo.99999999.svg"
}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := m.Resolve("src/main.tsx"); got != "main.a1b2c3d4.js" {
		t.Errorf("Resolve(src/main.tsx) = %q", got)
	}
	if got := m.Resolve("logo.svg"); got != "logo.99999999.svg" {
		t.Errorf("Resolve(logo.svg) = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, data := range []string{`not json`, `{"a.js": {"isEntry": true}}`, `{"a.js": 3}`} {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("Parse(%s) should fail", data)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, DefaultManifest)
	if err := os.WriteFile(manifestPath, []byte(`{"site.css": "site.def456.css"}`), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(manifestPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := m.Resolve("site.css"); got != "site.def456.css" {
		t.Errorf("Resolve(site.css) = %q", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load() should return error for missing file")
	}
}

func TestResolver(t *testing.T) {
	m := NewManifest()
	m.Set("site.css", "site.def456.css")

	tests := []struct {
		name     string
		prefix   string
		source   string
		expected string
	}{
		{"found entry", "/assets", "site.css", "/assets/site.def456.css"},
		{"trailing slash prefix", "/assets/", "site.css", "/assets/site.def456.css"},
		{"missing entry gets prefix", "/assets", "app.js", "/assets/app.js"},
		{"no prefix", "", "site.css", "site.def456.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResolver(m, tt.prefix).Asset(tt.source)
			if got != tt.expected {
				t.Errorf("Asset(%q) = %q, want %q", tt.source, got, tt.expected)
			}
		})
	}
}

func TestPassthroughResolver(t *testing.T) {
	r := NewPassthroughResolver("/assets")

	tests := []struct {
		source   string
		expected string
	}{
		{"site.js", "/assets/site.js"},
		{"/site.css", "/assets/site.css"},
		{"images/logo.png", "/assets/images/logo.png"},
	}

	for _, tt := range tests {
		if got := r.Asset(tt.source); got != tt.expected {
			t.Errorf("Asset(%q) = %q, want %q", tt.source, got, tt.expected)
		}
	}
}

func TestForStatic(t *testing.T) {
	fsys := fstest.MapFS{
		DefaultManifest: {Data: []byte(`{"site.css": "site.def456.css"}`)},
	}

	r, err := ForStatic(fsys, "", "/assets")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Asset("site.css"); got != "/assets/site.def456.css" {
		t.Errorf("with manifest: Asset = %q", got)
	}

	r, err = ForStatic(fstest.MapFS{}, "", "/assets")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Asset("site.css"); got != "/assets/site.css" {
		t.Errorf("without manifest: Asset = %q", got)
	}

	r, err = ForStatic(nil, "", "/static")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Asset("site.css"); got != "/static/site.css" {
		t.Errorf("nil fs: Asset = %q", got)
	}

	bad := fstest.MapFS{DefaultManifest: {Data: []byte(`[`)}}
	if _, err := ForStatic(bad, "", "/assets"); err == nil {
		t.Error("ForStatic should fail on a broken manifest")
	}
}

func TestFuncMap(t *testing.T) {
	m := NewManifest()
	m.Set("site.css", "site.def456.css")

	tmpl := template.Must(template.New("page").Funcs(FuncMap(NewResolver(m, "/assets"))).
		Parse(`<link href="{{asset "site.css"}}">`))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != `<link href="/assets/site.def456.css">` {
		t.Errorf("rendered %q", got)
	}
}
