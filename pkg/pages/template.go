package pages

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"io/fs"
	"text/template/parse"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// DefaultTemplateName is the template a page file may define to mark its
// default component explicitly.
const DefaultTemplateName = "default"

// PageData is the data passed to page templates.
type PageData struct {
	// Path is the request path.
	Path string

	// Params are the route parameters; the catch-all value is under "*".
	Params map[string]string

	// Children is the rendered content of the component's children. An app
	// shell places it with {{.Children}}.
	Children template.HTML
}

// TemplateComponent renders an html/template.
type TemplateComponent struct {
	tmpl *template.Template
}

// Render implements Component.
func (t *TemplateComponent) Render(ctx context.Context, w io.Writer, children ...Component) error {
	var buf bytes.Buffer
	if err := RenderChildren(ctx, &buf, children); err != nil {
		return err
	}
	return t.tmpl.Execute(w, PageData{
		Path:     PathFrom(ctx),
		Params:   ParamsFrom(ctx),
		Children: template.HTML(buf.String()),
	})
}

// Name returns the name of the template that renders the page.
func (t *TemplateComponent) Name() string {
	return t.tmpl.Name()
}

// TemplateLoader reads name from fsys and parses it with ParseTemplate.
func TemplateLoader(fsys fs.FS, name string) (Component, error) {
	return TemplateLoaderFuncs(nil)(fsys, name)
}

// TemplateLoaderFuncs is TemplateLoader with funcs available to every page.
func TemplateLoaderFuncs(funcs template.FuncMap) Loader {
	parse := TemplateParser(funcs)
	return func(fsys fs.FS, name string) (Component, error) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		return parse("/"+name, data)
	}
}

// ParseFunc parses the contents of the page at rawPath.
type ParseFunc func(rawPath string, data []byte) (Component, error)

// TemplateParser returns a ParseFunc like ParseTemplate with funcs added.
func TemplateParser(funcs template.FuncMap) ParseFunc {
	return func(rawPath string, data []byte) (Component, error) {
		return parseTemplate(rawPath, data, funcs)
	}
}

// ParseTemplate parses a page template. The default component is the
// template named "default" when the file defines one, otherwise the file's
// top-level content. A file with neither has no default export and yields
// an E204 error.
func ParseTemplate(rawPath string, data []byte) (Component, error) {
	return parseTemplate(rawPath, data, nil)
}

func parseTemplate(rawPath string, data []byte, funcs template.FuncMap) (Component, error) {
	root, err := template.New(rawPath).Funcs(funcs).Parse(string(data))
	if err != nil {
		return nil, errors.New("E208").WithPath(rawPath).Wrap(err)
	}
	if def := root.Lookup(DefaultTemplateName); def != nil {
		return &TemplateComponent{tmpl: def}, nil
	}
	if root.Tree == nil || parse.IsEmptyTree(root.Tree.Root) {
		return nil, errors.New("E204").
			WithPath(rawPath).
			WithSuggestion(`Add page content, or define it with {{define "default"}}...{{end}}`)
	}
	return &TemplateComponent{tmpl: root}, nil
}
