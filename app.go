package pagekit

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pagekit-dev/pagekit/internal/dev"
	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/bridge"
	"github.com/pagekit-dev/pagekit/pkg/middleware"
	"github.com/pagekit-dev/pagekit/pkg/pages"
	"github.com/pagekit-dev/pagekit/pkg/router"
	"github.com/pagekit-dev/pagekit/pkg/spa"
)

// App is a pagekit application. It is an http.Handler serving the page
// routes, the bridge, static files and, when enabled, metrics and the dev
// reload socket.
type App struct {
	config  Config
	router  *router.Router
	bridge  *bridge.Registry
	spa     *spa.Handler
	metrics *middleware.Metrics
	reload  *dev.ReloadServer
	handler http.Handler
	logger  *slog.Logger

	// reloadMu serializes Reload so two rebuilds cannot swap out of order.
	reloadMu sync.Mutex
}

// New discovers the pages, builds the route table and assembles the
// handler. It fails with the configuration error when the page tree is
// invalid; the error formats with errors.Fprint.
func New(ctx context.Context, cfg Config) (*App, error) {
	cfg = cfg.withDefaults()
	if cfg.Pages.Source == nil {
		return nil, errors.New("E120").WithDetail("No pages source configured")
	}
	if cfg.Mode != ModeSSR && cfg.Mode != ModeSPA {
		return nil, errors.New("E122").WithDetail("Got mode " + string(cfg.Mode))
	}
	for _, prefix := range []string{cfg.Static.Prefix, cfg.Bridge.Prefix} {
		if !strings.HasPrefix(prefix, "/") || strings.TrimSuffix(prefix, "/") == "" {
			return nil, errors.New("E124").
				WithDetail("Prefix " + prefix + " must start with \"/\" and name a path below the root")
		}
	}
	if cfg.Mode == ModeSPA && cfg.Static.FS == nil {
		return nil, errors.New("E120").
			WithDetail("SPA mode serves the index document from the static files, but none are configured").
			WithSuggestion("Set static.dir in pagekit.json")
	}

	table, err := BuildTable(ctx, cfg.Pages)
	if err != nil {
		return nil, err
	}

	a := &App{
		config: cfg,
		bridge: cfg.Bridge.Registry,
		logger: cfg.Logger,
	}
	if cfg.DevMode {
		a.reload = dev.NewReloadServer(cfg.Logger)
	}
	if cfg.Static.FS != nil {
		var opts []spa.Option
		if cfg.DevMode {
			opts = append(opts, spa.WithIndexRewriter(func(_ *http.Request, index string) string {
				return string(dev.InjectScript([]byte(index)))
			}))
		}
		a.spa = spa.New(cfg.Static.FS, cfg.Static.Index, opts...)
	}

	routerOpts := []router.Option{router.WithLogger(cfg.Logger)}
	if cfg.Mode == ModeSPA {
		routerOpts = append(routerOpts, router.WithShell(a.spa.Index()))
	}
	a.router = router.New(table, routerOpts...)

	if cfg.Metrics.Enabled {
		a.metrics = middleware.NewMetrics(middleware.WithRegistry(cfg.Metrics.Registry))
		a.metrics.SetEntries(len(table.Entries))
	}

	a.handler = a.routes()
	a.logger.Info("route table built", "routes", len(table.Entries), "mode", string(cfg.Mode))
	return a, nil
}

// BuildTable discovers the pages of pc and builds their route table.
func BuildTable(ctx context.Context, pc PagesConfig) (*router.RouteTable, error) {
	d, err := pages.Discover(ctx, pc.Source, pc.Options)
	if err != nil {
		return nil, err
	}
	return router.Build(d)
}

// routes assembles the chi router.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Handler)
	}
	if a.config.Tracing {
		r.Use(middleware.Tracing())
	}
	r.Use(middleware.Logger(a.logger))

	bridgeCfg := bridge.HandlerConfig{
		MaxBodyBytes: a.config.Bridge.MaxBodyBytes,
		Logger:       a.logger,
	}
	if a.metrics != nil {
		bridgeCfg.Observer = a.metrics.BridgeObserver()
	}
	r.Mount(a.config.Bridge.Prefix, a.bridge.Handler(bridgeCfg))

	if a.spa != nil {
		prefix := strings.TrimSuffix(a.config.Static.Prefix, "/")
		r.Mount(prefix, http.StripPrefix(prefix, a.staticHandler(a.spa.Assets())))
	}
	if a.metrics != nil {
		r.Method(http.MethodGet, a.config.Metrics.Path, promhttp.HandlerFor(a.config.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	var pagesHandler http.Handler = a.router
	if a.reload != nil {
		r.Handle(dev.ReloadPath, a.reload)
		if a.config.Mode == ModeSSR {
			pagesHandler = dev.InjectMiddleware(pagesHandler)
		}
	}
	r.Handle("/*", pagesHandler)
	return r
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Reload rediscovers the pages and swaps in the new route table. On error
// the current table keeps serving and the error is returned.
func (a *App) Reload(ctx context.Context) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	table, err := BuildTable(ctx, a.config.Pages)
	if a.metrics != nil {
		a.metrics.ObserveReload(err)
	}
	if err != nil {
		return err
	}
	a.router.Swap(table)
	if a.metrics != nil {
		a.metrics.SetEntries(len(table.Entries))
	}
	a.logger.Info("route table reloaded", "routes", len(table.Entries))
	return nil
}

// Table returns the route table currently served.
func (a *App) Table() *router.RouteTable {
	return a.router.Table()
}

// Router returns the page router.
func (a *App) Router() *router.Router {
	return a.router
}

// Bridge returns the function registry served under the bridge prefix.
func (a *App) Bridge() *bridge.Registry {
	return a.bridge
}

// ReloadServer returns the dev reload server, or nil outside dev mode.
func (a *App) ReloadServer() *dev.ReloadServer {
	return a.reload
}

// Run serves the app on Config.Addr until ctx is done, then shuts down
// gracefully within Config.ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.Addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", a.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("server shutting down")
	if a.reload != nil {
		a.reload.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// WriteBridgeClient writes the TypeScript client for the registered bridge
// functions to path. Generated functions call baseURL, or the bridge prefix
// when baseURL is empty.
func (a *App) WriteBridgeClient(path, baseURL string) error {
	if baseURL == "" {
		baseURL = a.config.Bridge.Prefix
	}
	var buf bytes.Buffer
	if err := bridge.GenerateTypeScript(&buf, a.bridge, baseURL); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
