package pages

import (
	"context"
	"fmt"
	"io"
)

// Component is a renderable unit. Children are rendered wherever the
// component places them; a page usually has none, an app shell wraps one.
type Component interface {
	Render(ctx context.Context, w io.Writer, children ...Component) error
}

// ComponentFunc is a function adapter for Component.
type ComponentFunc func(ctx context.Context, w io.Writer, children ...Component) error

// Render implements Component.
func (f ComponentFunc) Render(ctx context.Context, w io.Writer, children ...Component) error {
	return f(ctx, w, children...)
}

// Fragment renders its children in order and nothing else.
var Fragment Component = ComponentFunc(func(ctx context.Context, w io.Writer, children ...Component) error {
	return RenderChildren(ctx, w, children)
})

// RenderChildren renders each child in order, stopping at the first error.
func RenderChildren(ctx context.Context, w io.Writer, children []Component) error {
	for _, c := range children {
		if c == nil {
			continue
		}
		if err := c.Render(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// Ref is a path-only component. It stands in for a page that is rendered
// elsewhere (a client bundle), and is what code generation discovers.
type Ref struct {
	RawPath string
}

// Render implements Component. A Ref has no server-side rendering.
func (r Ref) Render(context.Context, io.Writer, ...Component) error {
	return fmt.Errorf("page %s is a module reference and cannot be rendered on the server", r.RawPath)
}

// PageFile is a discovered page.
type PageFile struct {
	// RawPath is the page's location in the virtual tree, e.g. "/pages/blog/[slug].html".
	RawPath string

	// Component is the page's default component.
	Component Component
}
