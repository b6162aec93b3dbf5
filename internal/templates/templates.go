package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// ModulePath is the Go module path.
	ModulePath string

	// Description is a short project description.
	Description string

	// JSRuntime is the JavaScript runtime for SPA projects.
	JSRuntime string

	// PackageManager is the package manager for SPA projects.
	PackageManager string
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents. Contents use
	// [[ ]] delimiters so page templates can keep their {{ }} actions.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"spa":     spaTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E145").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: minimal, spa")
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the files the template creates, sorted.
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Create generates a project from the template.
func (t *Template) Create(dir string, cfg Config) error {
	if cfg.JSRuntime == "" {
		cfg.JSRuntime = "node"
	}
	if cfg.PackageManager == "" {
		cfg.PackageManager = "npm"
	}

	for _, relPath := range t.Paths() {
		tmpl, err := template.New(relPath).Delims("[[", "]]").Parse(t.Files[relPath])
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

const goMod = `module [[.ModulePath]]

go 1.25.0

require github.com/pagekit-dev/pagekit v0.1.0
`

const gitignore = `/[[.ProjectName]]
node_modules/
dist/
*.log
`

// minimalTemplate returns the server-rendered template.
func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "Server-rendered pages from html/template files",
		Files: map[string]string{
			"go.mod":     goMod,
			".gitignore": gitignore,
			"pagekit.json": `{
  "name": "[[.ProjectName]]",
  "mode": "ssr",
  "pages": {
    "dir": "pages",
    "ext": ".html"
  },
  "static": {
    "dir": "public",
    "prefix": "/assets"
  },
  "server": {
    "host": "localhost",
    "port": 3000
  },
  "dev": {
    "hotReload": true,
    "debounce": "100ms"
  }
}
`,
			"main.go": `package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pagekit-dev/pagekit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := pagekit.LoadProject(ctx, ".")
	if err != nil {
		slog.Error("loading project", "error", err)
		os.Exit(1)
	}
	app, err := pagekit.New(ctx, cfg)
	if err != nil {
		slog.Error("building routes", "error", err)
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
`,
			"pages/_app.html": `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>[[.ProjectName]]</title>
  <link rel="stylesheet" href="{{asset "site.css"}}">
</head>
<body>
  <nav><a href="/">Home</a> <a href="/blog/hello-world">Blog</a> <a href="/docs/getting-started">Docs</a></nav>
  <main>{{.Children}}</main>
</body>
</html>
`,
			"pages/index.html": `<h1>Welcome to [[.ProjectName]]</h1>
<p>Edit pages/index.html and save to reload.</p>
`,
			"pages/404.html": `<h1>Page not found</h1>
<p>Nothing lives at {{.Path}}.</p>
`,
			"pages/blog/[slug].html": `<article>
  <h1>{{index .Params "slug"}}</h1>
  <p>Served by pages/blog/[slug].html.</p>
</article>
`,
			"pages/docs/[...path].html": `<h1>Docs</h1>
<p>You asked for {{index .Params "*"}}.</p>
`,
			"public/site.css": `body { font-family: system-ui, sans-serif; max-width: 800px; margin: 0 auto; padding: 2rem; }
nav a { margin-right: 1rem; }
`,
		},
	}
}

// spaTemplate returns the client-rendered template with a function bridge.
func spaTemplate() *Template {
	return &Template{
		Name:        "spa",
		Description: "React single page app with Go bridge functions",
		Files: map[string]string{
			"go.mod":     goMod,
			".gitignore": gitignore,
			"pagekit.json": `{
  "name": "[[.ProjectName]]",
  "mode": "spa",
  "pages": {
    "dir": "pages",
    "ext": ".tsx"
  },
  "static": {
    "dir": "dist",
    "prefix": "/assets"
  },
  "bridge": {
    "prefix": "/api",
    "output": "src/functions.ts"
  },
  "frontend": {
    "jsRuntime": "[[.JSRuntime]]",
    "packageManager": "[[.PackageManager]]"
  }
}
`,
			"main.go": `package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pagekit-dev/pagekit"
)

func main() {
	genBridge := flag.String("gen-bridge", "", "write the TypeScript bridge client to this path and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := pagekit.LoadProject(ctx, ".")
	if err != nil {
		slog.Error("loading project", "error", err)
		os.Exit(1)
	}
	app, err := pagekit.New(ctx, cfg)
	if err != nil {
		slog.Error("building routes", "error", err)
		os.Exit(1)
	}
	register(app)

	if *genBridge != "" {
		if err := app.WriteBridgeClient(*genBridge, ""); err != nil {
			slog.Error("generating bridge client", "error", err)
			os.Exit(1)
		}
		return
	}
	if err := app.Run(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
`,
			"functions.go": `package main

import (
	"context"
	"errors"
	"strings"

	"github.com/pagekit-dev/pagekit"
)

// User is returned to the browser as JSON.
type User struct {
	Username string ` + "`json:\"username\"`" + `
	Email    string ` + "`json:\"email\"`" + `
}

func register(app *pagekit.App) {
	app.Bridge().MustRegister("add", Add, "a", "b")
	app.Bridge().MustRegister("create_user", CreateUser, "email", "password", "username")
}

// Add adds two numbers.
func Add(a, b int) int {
	return a + b
}

// CreateUser validates a new user.
func CreateUser(ctx context.Context, email, password, username string) (User, error) {
	if !strings.Contains(email, "@") {
		return User{}, errors.New("invalid email")
	}
	if len(password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}
	return User{Username: username, Email: email}, nil
}
`,
			"package.json": `{
  "name": "[[.ProjectName]]",
  "private": true,
  "type": "module",
  "scripts": {
    "dev": "vite",
    "build": "pagekit gen routes --format ts -o src/routes.ts && pagekit gen bridge && vite build"
  },
  "dependencies": {
    "axios": "^1.7.0",
    "react": "^18.3.0",
    "react-dom": "^18.3.0",
    "react-router-dom": "^6.26.0"
  },
  "devDependencies": {
    "@types/react": "^18.3.0",
    "@types/react-dom": "^18.3.0",
    "@vitejs/plugin-react": "^4.3.0",
    "typescript": "^5.5.0",
    "vite": "^5.4.0"
  }
}
`,
			"vite.config.ts": `import { defineConfig } from "vite";
import react from "@vitejs/plugin-react";

export default defineConfig({
  plugins: [react()],
  base: "/assets/",
  server: {
    proxy: { "/api": "http://localhost:3000" },
  },
});
`,
			"index.html": `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <base href="/" />
  <title>[[.ProjectName]]</title>
</head>
<body>
  <div id="root"></div>
  <script type="module" src="/src/main.tsx"></script>
</body>
</html>
`,
			"src/main.tsx": `import { StrictMode, Fragment, type ComponentType, type ReactNode } from "react";
import { createRoot } from "react-dom/client";
import { BrowserRouter, Routes, Route } from "react-router-dom";
import { app, notFound, routes } from "./routes";

const App: ComponentType<{ children?: ReactNode }> = app ?? Fragment;
const NotFound = notFound ?? Fragment;

createRoot(document.getElementById("root")!).render(
  <StrictMode>
    <BrowserRouter>
      <App>
        <Routes>
          {routes.map(({ path, component: Page }) => (
            <Route key={path} path={path} element={<Page />} />
          ))}
          <Route path="*" element={<NotFound />} />
        </Routes>
      </App>
    </BrowserRouter>
  </StrictMode>
);
`,
			"pages/_app.tsx": `import type { ReactNode } from "react";

export default function App({ children }: { children?: ReactNode }) {
  return <main>{children}</main>;
}
`,
			"pages/index.tsx": `import { useState } from "react";
import { add } from "../src/functions";

export default function Home() {
  const [total, setTotal] = useState(0);
  return (
    <h1 onClick={() => add(total, 1).then(setTotal)}>
      [[.ProjectName]]: {total}
    </h1>
  );
}
`,
			"pages/404.tsx": `export default function NotFound() {
  return <h1>Page not found</h1>;
}
`,
			"pages/users/[id].tsx": `import { useParams } from "react-router-dom";

export default function User() {
  const { id } = useParams();
  return <h1>User {id}</h1>;
}
`,
		},
	}
}
