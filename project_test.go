package pagekit

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"pagekit.json":             `{"server": {"port": 4000}, "static": {"prefix": "/static"}}`,
		"pages/index.html":         `<p id="p">home</p>`,
		"pages/users/[id].html":    `<p id="p">user {{index .Params "id"}}</p>`,
		"pages/users/nested/.keep": ``,
		"public/favicon.ico":       `icon`,
	})

	cfg, err := LoadProject(context.Background(), filepath.Join(dir, "pages", "users"))
	if err != nil {
		t.Fatalf("LoadProject() error: %v", err)
	}
	if cfg.Addr != "localhost:4000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.Static.FS == nil {
		t.Fatal("expected static files from public/")
	}

	cfg.Logger = quiet
	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	rec := get(app, "/users/42")
	if rec.Code != http.StatusOK {
		t.Fatalf("/users/42 status = %d", rec.Code)
	}
	if got := doc(t, rec).Find("#p").Text(); got != "user 42" {
		t.Errorf("#p = %q", got)
	}
	if rec := get(app, "/static/favicon.ico"); rec.Code != http.StatusOK {
		t.Errorf("/static/favicon.ico status = %d", rec.Code)
	}
}

func TestLoadProjectErrors(t *testing.T) {
	if _, err := LoadProject(context.Background(), t.TempDir()); !errors.HasCode(err, "E141") {
		t.Errorf("missing pagekit.json: %v", err)
	}

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"pagekit.json": `{"mode": "isr"}`})
	if _, err := LoadProject(context.Background(), dir); !errors.HasCode(err, "E122") {
		t.Errorf("invalid mode: %v", err)
	}
}

func TestLoadProjectAssetFunc(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"pagekit.json":         `{}`,
		"pages/index.html":     `<link id="css" href="{{asset "site.css"}}"><link id="js" href="{{asset "app.js"}}">`,
		"public/manifest.json": `{"site.css": "site.1a2b3c4d.css"}`,
	})

	cfg, err := LoadProject(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadProject() error: %v", err)
	}
	cfg.Logger = quiet
	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	d := doc(t, get(app, "/"))
	if got, _ := d.Find("#css").Attr("href"); got != "/assets/site.1a2b3c4d.css" {
		t.Errorf("fingerprinted href = %q", got)
	}
	if got, _ := d.Find("#js").Attr("href"); got != "/assets/app.js" {
		t.Errorf("unlisted href = %q", got)
	}

	writeFiles(t, dir, map[string]string{"public/manifest.json": `{`})
	if _, err := LoadProject(context.Background(), dir); !errors.HasCode(err, "E120") {
		t.Errorf("broken manifest: %v", err)
	}
}
