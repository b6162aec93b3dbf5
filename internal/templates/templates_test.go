package templates

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

func TestGet(t *testing.T) {
	for _, name := range []string{"minimal", "spa"} {
		tmpl, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if tmpl.Name != name {
			t.Errorf("Name = %q, want %q", tmpl.Name, name)
		}
	}

	if _, err := Get("nope"); !errors.HasCode(err, "E145") {
		t.Errorf("Get(nope) error = %v, want E145", err)
	}
}

func TestList(t *testing.T) {
	got := List()
	if len(got) != 2 || got[0] != "minimal" || got[1] != "spa" {
		t.Errorf("List() = %v", got)
	}
}

func TestCreateMinimal(t *testing.T) {
	dir := t.TempDir()
	tmpl, _ := Get("minimal")
	cfg := Config{ProjectName: "blog", ModulePath: "example.com/blog"}
	if err := tmpl.Create(dir, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, rel := range []string{
		"pagekit.json",
		"go.mod",
		"main.go",
		"pages/_app.html",
		"pages/index.html",
		"pages/404.html",
		"pages/blog/[slug].html",
		"pages/docs/[...path].html",
		"public/site.css",
	} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	gomod := read(t, dir, "go.mod")
	if !strings.HasPrefix(gomod, "module example.com/blog\n") {
		t.Errorf("go.mod = %q", gomod)
	}

	app := read(t, dir, "pages/_app.html")
	if !strings.Contains(app, "<title>blog</title>") {
		t.Errorf("_app.html title not substituted:\n%s", app)
	}
	if !strings.Contains(app, "{{.Children}}") {
		t.Errorf("_app.html lost its page action:\n%s", app)
	}

	var project map[string]any
	if err := json.Unmarshal([]byte(read(t, dir, "pagekit.json")), &project); err != nil {
		t.Fatalf("pagekit.json is not JSON: %v", err)
	}
	if project["name"] != "blog" || project["mode"] != "ssr" {
		t.Errorf("pagekit.json = %v", project)
	}
}

func TestCreateSPA(t *testing.T) {
	dir := t.TempDir()
	tmpl, _ := Get("spa")
	cfg := Config{ProjectName: "shop", ModulePath: "example.com/shop", PackageManager: "pnpm"}
	if err := tmpl.Create(dir, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var project struct {
		Mode     string `json:"mode"`
		Frontend struct {
			JSRuntime      string `json:"jsRuntime"`
			PackageManager string `json:"packageManager"`
		} `json:"frontend"`
	}
	if err := json.Unmarshal([]byte(read(t, dir, "pagekit.json")), &project); err != nil {
		t.Fatalf("pagekit.json is not JSON: %v", err)
	}
	if project.Mode != "spa" {
		t.Errorf("mode = %q", project.Mode)
	}
	if project.Frontend.JSRuntime != "node" || project.Frontend.PackageManager != "pnpm" {
		t.Errorf("frontend = %+v", project.Frontend)
	}

	if !strings.Contains(read(t, dir, "main.go"), `"gen-bridge"`) {
		t.Error("main.go has no gen-bridge flag")
	}
	if _, err := os.Stat(filepath.Join(dir, "pages", "users", "[id].tsx")); err != nil {
		t.Error(err)
	}
}

func TestPathsSorted(t *testing.T) {
	tmpl, _ := Get("minimal")
	paths := tmpl.Paths()
	for i := 1; i < len(paths); i++ {
		if paths[i-1] > paths[i] {
			t.Fatalf("Paths() not sorted: %v", paths)
		}
	}
}

func read(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
