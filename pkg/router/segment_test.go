package router

import (
	"reflect"
	"testing"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		key  string
		want []Segment
	}{
		{"", nil},
		{"about", []Segment{{Static, "about"}}},
		{"blog/[slug]", []Segment{{Static, "blog"}, {Dynamic, "slug"}}},
		{"[id]/edit", []Segment{{Dynamic, "id"}, {Static, "edit"}}},
		{"[org]/[repo]", []Segment{{Dynamic, "org"}, {Dynamic, "repo"}}},
		{"docs/[...path]", []Segment{{Static, "docs"}, {CatchAll, ""}}},
		{"[...rest]", []Segment{{CatchAll, ""}}},
		{"shop/[id:int]", []Segment{{Static, "shop"}, {Dynamic, "id:int"}}},
	}

	for _, tt := range tests {
		got, err := ParsePattern(tt.key)
		if err != nil {
			t.Errorf("ParsePattern(%q) error: %v", tt.key, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePattern(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestParsePatternErrors(t *testing.T) {
	tests := []struct {
		key  string
		code string
	}{
		{"[id", "E200"},
		{"id]", "E200"},
		{"]id[", "E200"},
		{"blog/[[id]", "E200"},
		{"[]", "E201"},
		{"[...]", "E201"},
		{"[...slug]/extra", "E202"},
		{"docs/[...path]/[id]", "E202"},
		{"post-[id]", "E206"},
		{"[id].json", "E206"},
		{"[a][b]", "E206"},
		{"[..x]", "E206"},
		{"[...a-b]", "E206"},
		{"a//b", "E206"},
		{"[id]/[id]", "E210"},
		{"[id]/edit/[id]", "E210"},
		{"a/*/x", "E211"},
		{"a/:b/y", "E211"},
		{"files/*.bak", "E211"},
	}

	for _, tt := range tests {
		_, err := ParsePattern(tt.key)
		if !errors.HasCode(err, tt.code) {
			t.Errorf("ParsePattern(%q) error = %v, want %s", tt.key, err, tt.code)
		}
	}
}

func TestFormatPattern(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "/"},
		{"about", "/about"},
		{"blog/[slug]", "/blog/:slug"},
		{"[id]/edit", "/:id/edit"},
		{"docs/[...path]", "/docs/*"},
		{"a/[b]/c/[d]", "/a/:b/c/:d"},
	}

	for _, tt := range tests {
		segs, err := ParsePattern(tt.key)
		if err != nil {
			t.Fatalf("ParsePattern(%q) error: %v", tt.key, err)
		}
		if got := FormatPattern(segs); got != tt.want {
			t.Errorf("FormatPattern(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestShapeIgnoresParamNames(t *testing.T) {
	a, _ := ParsePattern("blog/[slug]")
	b, _ := ParsePattern("blog/[id]")
	c, _ := ParsePattern("blog/[...rest]")
	if shape(a) != shape(b) {
		t.Errorf("shape(%v) != shape(%v)", a, b)
	}
	if shape(a) == shape(c) {
		t.Errorf("dynamic and catch-all must differ in shape")
	}
}
