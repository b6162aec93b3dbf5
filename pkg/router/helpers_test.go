package router

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/pagekit-dev/pagekit/pkg/pages"
)

// page renders as "<name>" or, with children, "<name>children</name>".
type page string

func (p page) Render(ctx context.Context, w io.Writer, children ...pages.Component) error {
	if len(children) == 0 {
		_, err := fmt.Fprintf(w, "<%s>", string(p))
		return err
	}
	fmt.Fprintf(w, "<%s>", string(p))
	if err := pages.RenderChildren(ctx, w, children); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "</%s>", string(p))
	return err
}

type file struct {
	path string
	c    pages.Component
}

var tsxOpts = pages.Options{Root: "/pages", Ext: ".tsx"}

func discoverFiles(t *testing.T, files ...file) (*pages.Discovery, error) {
	t.Helper()
	reg := pages.NewRegistry()
	for _, f := range files {
		reg.MustRegister(f.path, f.c)
	}
	return pages.Discover(context.Background(), reg, tsxOpts)
}

func buildFiles(t *testing.T, files ...file) (*RouteTable, error) {
	t.Helper()
	d, err := discoverFiles(t, files...)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	return Build(d)
}

func mustBuild(t *testing.T, files ...file) *RouteTable {
	t.Helper()
	table, err := buildFiles(t, files...)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return table
}
