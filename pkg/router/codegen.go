package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Output formats understood by Generator.Generate.
const (
	FormatJSON = "json"
	FormatTS   = "ts"
)

// Manifest is the serialisable form of a route table.
type Manifest struct {
	App      string          `json:"app,omitempty"`
	NotFound string          `json:"notFound,omitempty"`
	Routes   []ManifestRoute `json:"routes"`
}

// ManifestRoute is one entry of a Manifest.
type ManifestRoute struct {
	Pattern string   `json:"pattern"`
	File    string   `json:"file"`
	Params  []string `json:"params,omitempty"`
}

// Generator emits static route modules from a route table, so that a client
// bundle can import every page eagerly without a runtime directory walk.
type Generator struct {
	table      *RouteTable
	importBase string
}

// NewGenerator creates a generator for t. importBase is prepended to page
// paths in generated imports, e.g. "." turns /pages/index.tsx into
// "./pages/index".
func NewGenerator(t *RouteTable, importBase string) *Generator {
	return &Generator{table: t, importBase: strings.TrimSuffix(importBase, "/")}
}

// Manifest returns the table as a Manifest.
func (g *Generator) Manifest() Manifest {
	m := Manifest{
		App:      g.table.AppPath,
		NotFound: g.table.NotFoundPath,
		Routes:   make([]ManifestRoute, 0, len(g.table.Entries)),
	}
	for i := range g.table.Entries {
		e := &g.table.Entries[i]
		m.Routes = append(m.Routes, ManifestRoute{
			Pattern: e.Pattern,
			File:    e.RawPath,
			Params:  e.Params(),
		})
	}
	return m
}

// Generate renders the table in the given format.
func (g *Generator) Generate(format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(g.Manifest(), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case FormatTS:
		return g.typeScript(), nil
	}
	return nil, errors.New("E148").WithDetail(fmt.Sprintf("Route modules can be generated as %s or %s, got %q.", FormatJSON, FormatTS, format))
}

func (g *Generator) typeScript() []byte {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by pagekit. DO NOT EDIT.\n\n")

	if g.table.AppPath != "" {
		fmt.Fprintf(&buf, "import App from %q;\n", g.importPath(g.table.AppPath))
	}
	if g.table.NotFoundPath != "" {
		fmt.Fprintf(&buf, "import NotFound from %q;\n", g.importPath(g.table.NotFoundPath))
	}
	for i, e := range g.table.Entries {
		fmt.Fprintf(&buf, "import Page%d from %q;\n", i, g.importPath(e.RawPath))
	}

	buf.WriteString("\n")
	if g.table.AppPath != "" {
		buf.WriteString("export const app = App;\n")
	} else {
		buf.WriteString("export const app = undefined;\n")
	}
	if g.table.NotFoundPath != "" {
		buf.WriteString("export const notFound = NotFound;\n")
	} else {
		buf.WriteString("export const notFound = undefined;\n")
	}

	buf.WriteString("\nexport const routes = [\n")
	for i, e := range g.table.Entries {
		fmt.Fprintf(&buf, "  { path: %q, component: Page%d },\n", e.Pattern, i)
	}
	buf.WriteString("];\n")
	return buf.Bytes()
}

// importPath strips the extension so bundlers resolve the module themselves.
func (g *Generator) importPath(rawPath string) string {
	p := strings.TrimSuffix(rawPath, path.Ext(rawPath))
	if g.importBase == "" {
		return p
	}
	return g.importBase + p
}
