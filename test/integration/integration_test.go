package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/pagekit-dev/pagekit"
	"github.com/pagekit-dev/pagekit/internal/dev"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

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

// newApp builds an app from a project written to a temp dir.
func newApp(t *testing.T, devMode bool) (*pagekit.App, string) {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"pagekit.json":           `{}`,
		"pages/_app.html":        `<main>{{.Children}}</main>`,
		"pages/index.html":       `home`,
		"pages/404.html":         `missing {{.Path}}`,
		"pages/blog/[slug].html": `post {{index .Params "slug"}}`,
	})

	cfg, err := pagekit.LoadProject(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadProject() error: %v", err)
	}
	cfg.Logger = quiet
	cfg.DevMode = devMode
	app, err := pagekit.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return app, dir
}

func body(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, rec.Body.String()
}

func TestChiRouterIntegration(t *testing.T) {
	app, _ := newApp(t, false)

	var sawPage bool
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				sawPage = true
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/*", app)

	t.Run("own routes", func(t *testing.T) {
		code, got := body(t, r, "/api/health")
		if code != http.StatusOK || got != "OK" {
			t.Errorf("/api/health = %d %q", code, got)
		}
	})

	t.Run("pages behind outer middleware", func(t *testing.T) {
		code, got := body(t, r, "/blog/hello")
		if code != http.StatusOK || got != "<main>post hello</main>" {
			t.Errorf("/blog/hello = %d %q", code, got)
		}
		if !sawPage {
			t.Error("outer middleware did not run before the app")
		}
	})

	t.Run("not found", func(t *testing.T) {
		code, got := body(t, r, "/nope")
		if code != http.StatusNotFound || got != "<main>missing /nope</main>" {
			t.Errorf("/nope = %d %q", code, got)
		}
	})
}

func TestStdlibMuxIntegration(t *testing.T) {
	app, _ := newApp(t, false)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	mux.Handle("/", app)

	if code, got := body(t, mux, "/api/health"); code != http.StatusOK || got != "OK" {
		t.Errorf("/api/health = %d %q", code, got)
	}
	if code, got := body(t, mux, "/"); code != http.StatusOK || got != "<main>home</main>" {
		t.Errorf("/ = %d %q", code, got)
	}
}

// readUntil reads reload messages until one of type want arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want dev.ReloadMessageType) dev.ReloadMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		var msg dev.ReloadMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type == want {
			return msg
		}
	}
}

func TestDevReload(t *testing.T) {
	app, dir := newApp(t, true)
	srv := httptest.NewServer(app)
	defer srv.Close()

	loop, err := dev.NewLoop(dev.LoopConfig{
		App:      app,
		Paths:    []string{filepath.Join(dir, "pages")},
		PageExt:  ".html",
		Debounce: 20 * time.Millisecond,
		Reload:   app.ReloadServer(),
		Logger:   quiet,
	})
	if err != nil {
		t.Fatalf("NewLoop() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + dev.ReloadPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()
	for deadline := time.Now().Add(5 * time.Second); app.ReloadServer().ClientCount() == 0; {
		if time.Now().After(deadline) {
			t.Fatal("browser never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	writeFiles(t, dir, map[string]string{"pages/about.html": `about`})
	readUntil(t, conn, dev.ReloadTypeFull)

	code, got := body(t, app, "/about")
	if code != http.StatusOK || !strings.Contains(got, "<main>about</main>") {
		t.Fatalf("/about after reload = %d %q", code, got)
	}
	if !strings.Contains(got, dev.ReloadPath) {
		t.Error("dev client script not injected")
	}

	writeFiles(t, dir, map[string]string{"pages/[broken.html": `x`})
	msg := readUntil(t, conn, dev.ReloadTypeError)
	if !strings.Contains(msg.Error, "[broken.html") {
		t.Errorf("error overlay does not name the file: %q", msg.Error)
	}
	if code, _ := body(t, app, "/about"); code != http.StatusOK {
		t.Errorf("previous table should keep serving, /about = %d", code)
	}
}
