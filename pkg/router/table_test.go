package router

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/pages"
)

func TestBuildScenarioFullTree(t *testing.T) {
	table := mustBuild(t,
		file{"/pages/_app.tsx", page("Shell")},
		file{"/pages/404.tsx", page("NF")},
		file{"/pages/index.tsx", page("A")},
		file{"/pages/blog/index.tsx", page("B")},
		file{"/pages/blog/[slug].tsx", page("C")},
		file{"/pages/docs/[...path].tsx", page("D")},
	)

	wantPatterns := []string{"/", "/blog", "/blog/:slug", "/docs/*"}
	if got := table.Patterns(); !reflect.DeepEqual(got, wantPatterns) {
		t.Errorf("patterns = %v, want %v", got, wantPatterns)
	}
	wantComponents := []page{"A", "B", "C", "D"}
	for i, e := range table.Entries {
		if e.Component != wantComponents[i] {
			t.Errorf("entry %s component = %v, want %v", e.Pattern, e.Component, wantComponents[i])
		}
	}
	if table.App != page("Shell") || table.NotFound != page("NF") {
		t.Errorf("slots = %v, %v", table.App, table.NotFound)
	}
	if table.AppPath != "/pages/_app.tsx" || table.NotFoundPath != "/pages/404.tsx" {
		t.Errorf("slot paths = %q, %q", table.AppPath, table.NotFoundPath)
	}
}

func TestBuildScenarioSingleIndex(t *testing.T) {
	table := mustBuild(t, file{"/pages/index.tsx", page("A")})

	if got := table.Patterns(); !reflect.DeepEqual(got, []string{"/"}) {
		t.Errorf("patterns = %v", got)
	}
	if table.App != nil || table.NotFound != nil {
		t.Errorf("slots should be absent")
	}
}

func TestBuildScenarioLeadingParam(t *testing.T) {
	table := mustBuild(t, file{"/pages/[id]/edit.tsx", page("E")})

	if got := table.Patterns(); !reflect.DeepEqual(got, []string{"/:id/edit"}) {
		t.Errorf("patterns = %v", got)
	}
	if got := table.Entries[0].Params(); !reflect.DeepEqual(got, []string{"id"}) {
		t.Errorf("params = %v", got)
	}
}

func TestBuildScenarioCatchAllNotFinal(t *testing.T) {
	table, err := buildFiles(t,
		file{"/pages/index.tsx", page("A")},
		file{"/pages/[...slug]/extra.tsx", page("X")},
	)
	if table != nil {
		t.Error("no table may be produced")
	}
	if !errors.HasCode(err, "E202") {
		t.Fatalf("Build() error = %v, want E202", err)
	}
	if !strings.Contains(err.Error(), "/pages/[...slug]/extra.tsx") {
		t.Errorf("error should name the offending file: %v", err)
	}
}

func TestBuildStaticPatterns(t *testing.T) {
	// Pages without brackets map to "/" + key.
	for _, p := range []string{"about", "blog/archive", "a/b/c/d", "reindex", "index/child"} {
		table := mustBuild(t, file{"/pages/" + p + ".tsx", page("P")})
		if got := table.Entries[0].Pattern; got != "/"+p {
			t.Errorf("pattern for %s = %q", p, got)
		}
		if !table.Entries[0].IsStatic() {
			t.Errorf("%s should be static", p)
		}
	}
}

func TestBuildCatchAllNameDiscarded(t *testing.T) {
	for _, name := range []string{"path", "slug", "x", "rest_2"} {
		table := mustBuild(t, file{"/pages/docs/[..." + name + "].tsx", page("D")})
		if got := table.Entries[0].Pattern; got != "/docs/*" {
			t.Errorf("pattern for %s = %q, want /docs/*", name, got)
		}
	}
}

func TestBuildCollectsAllErrors(t *testing.T) {
	_, err := buildFiles(t,
		file{"/pages/[id.tsx", page("A")},
		file{"/pages/[].tsx", page("B")},
		file{"/pages/[...a]/b.tsx", page("C")},
	)
	for _, code := range []string{"E200", "E201", "E202"} {
		if !errors.HasCode(err, code) {
			t.Errorf("Build() error = %v, missing %s", err, code)
		}
	}
}

func TestBuildRejectsRepeatedParams(t *testing.T) {
	_, err := buildFiles(t, file{"/pages/[id]/[id].tsx", page("A")})
	if !errors.HasCode(err, "E210") {
		t.Fatalf("Build() error = %v, want E210", err)
	}
	if !strings.Contains(err.Error(), "/pages/[id]/[id].tsx") {
		t.Errorf("error should name the offending file: %v", err)
	}
}

func TestBuildRejectsPatternCharactersInStaticSegments(t *testing.T) {
	_, err := buildFiles(t,
		file{"/pages/a/*/x.tsx", page("A")},
		file{"/pages/a/:b/y.tsx", page("B")},
	)
	if !errors.HasCode(err, "E211") {
		t.Fatalf("Build() error = %v, want E211", err)
	}
	for _, p := range []string{"/pages/a/*/x.tsx", "/pages/a/:b/y.tsx"} {
		if !strings.Contains(err.Error(), p) {
			t.Errorf("error should name %s: %v", p, err)
		}
	}
}

func TestBuildRejectsAmbiguousRoutes(t *testing.T) {
	_, err := buildFiles(t,
		file{"/pages/blog/[slug].tsx", page("A")},
		file{"/pages/blog/[id].tsx", page("B")},
	)
	if !errors.HasCode(err, "E205") {
		t.Fatalf("Build() error = %v, want E205", err)
	}
	for _, p := range []string{"/pages/blog/[slug].tsx", "/pages/blog/[id].tsx"} {
		if !strings.Contains(err.Error(), p) {
			t.Errorf("error detail should list %s", p)
		}
	}
}

func TestBuildDifferentShapesAreNotAmbiguous(t *testing.T) {
	mustBuild(t,
		file{"/pages/blog/[slug].tsx", page("A")},
		file{"/pages/blog/[...rest].tsx", page("B")},
		file{"/pages/blog/new.tsx", page("C")},
		file{"/pages/[section]/[slug].tsx", page("D")},
	)
}

func TestBuildRejectsPageOutsideRoot(t *testing.T) {
	d := &pages.Discovery{
		Candidates: []pages.PageFile{{RawPath: "/elsewhere/a.tsx", Component: page("A")}},
		Options:    tsxOpts,
	}
	if _, err := Build(d); !errors.HasCode(err, "E209") {
		t.Errorf("Build() error = %v, want E209", err)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/_app.html":          {Data: []byte(`<main>{{.Children}}</main>`)},
		"pages/404.html":           {Data: []byte(`missing`)},
		"pages/index.html":         {Data: []byte(`home`)},
		"pages/blog/index.html":    {Data: []byte(`blog`)},
		"pages/blog/[slug].html":   {Data: []byte(`post`)},
		"pages/docs/[...p].html":   {Data: []byte(`docs`)},
		"pages/users/[id]/x.html":  {Data: []byte(`x`)},
		"pages/users/profile.html": {Data: []byte(`profile`)},
	}
	build := func() *RouteTable {
		d, err := pages.Discover(context.Background(), pages.NewFSSource(fsys, "pages"), pages.Options{})
		if err != nil {
			t.Fatalf("Discover() error: %v", err)
		}
		table, err := Build(d)
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		return table
	}

	first, second := build(), build()
	if !reflect.DeepEqual(first.Patterns(), second.Patterns()) {
		t.Errorf("patterns differ: %v vs %v", first.Patterns(), second.Patterns())
	}
	if first.AppPath != second.AppPath || first.NotFoundPath != second.NotFoundPath {
		t.Errorf("slot assignment differs")
	}
}

func TestReservedNeverRoutable(t *testing.T) {
	table := mustBuild(t,
		file{"/pages/_app.tsx", page("Shell")},
		file{"/pages/404.tsx", page("NF")},
		file{"/pages/about.tsx", page("A")},
	)
	for _, e := range table.Entries {
		if strings.Contains(e.RawPath, "_app") || strings.Contains(e.RawPath, "404") {
			t.Errorf("reserved page %s is routable", e.RawPath)
		}
	}
	if _, ok := table.Lookup("/404"); ok {
		t.Error("/404 must not be a route")
	}
}

func TestSortBySpecificity(t *testing.T) {
	table := mustBuild(t,
		file{"/pages/[...all].tsx", page("A")},
		file{"/pages/blog/[slug].tsx", page("B")},
		file{"/pages/blog/new.tsx", page("C")},
		file{"/pages/[section].tsx", page("D")},
		file{"/pages/blog/index.tsx", page("E")},
		file{"/pages/index.tsx", page("F")},
	)
	entries := append([]RouteEntry(nil), table.Entries...)
	SortBySpecificity(entries)

	var got []string
	for _, e := range entries {
		got = append(got, e.Pattern)
	}
	want := []string{"/", "/blog", "/blog/new", "/blog/:slug", "/:section", "/*"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
	if table.Entries[0].Pattern != "/*" {
		t.Error("sorting a copy must not reorder the table")
	}
}
