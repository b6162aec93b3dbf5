package dev

import (
	"context"
	"log/slog"
	"time"
)

// Reloader rebuilds the served pages.
type Reloader interface {
	Reload(ctx context.Context) error
}

// LoopConfig configures the dev loop.
type LoopConfig struct {
	// App is rebuilt whenever a page changes.
	App Reloader

	// Paths are the directories to watch.
	Paths []string

	// Ignore are extra ignore patterns, added to DefaultIgnore.
	Ignore []string

	// PageExt is the page extension.
	PageExt string

	// Debounce is the watcher quiet period.
	Debounce time.Duration

	// Reload is the server browsers are connected to. A new one is
	// created when nil.
	Reload *ReloadServer

	Logger *slog.Logger
}

// Loop ties a Watcher to a ReloadServer: page changes rebuild the app,
// then browsers reload or show the error.
type Loop struct {
	app     Reloader
	watcher *Watcher
	reload  *ReloadServer
	logger  *slog.Logger
}

// NewLoop creates the watcher and the reload server.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	w, err := NewWatcher(WatcherConfig{
		Paths:    CollectWatchPaths(cfg.Paths...),
		Ignore:   append(append([]string{}, DefaultIgnore...), cfg.Ignore...),
		PageExt:  cfg.PageExt,
		Debounce: cfg.Debounce,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Reload == nil {
		cfg.Reload = NewReloadServer(cfg.Logger)
	}
	return &Loop{
		app:     cfg.App,
		watcher: w,
		reload:  cfg.Reload,
		logger:  cfg.Logger,
	}, nil
}

// ReloadServer returns the server browsers connect to.
func (l *Loop) ReloadServer() *ReloadServer {
	return l.reload
}

// Run processes changes until ctx is done, then closes the watcher and all
// browser connections.
func (l *Loop) Run(ctx context.Context) error {
	go l.watcher.Start()
	defer l.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-l.watcher.Events():
			if !ok {
				return nil
			}
			l.Handle(ctx, batch)
		}
	}
}

// Handle reacts to one batch of changes.
func (l *Loop) Handle(ctx context.Context, batch []Change) {
	if len(batch) == 0 {
		return
	}

	pagesChanged := false
	cssOnly := true
	for _, c := range batch {
		l.logger.Debug("file changed", "path", c.Path, "type", c.Type.String(), "removed", c.Removed)
		switch c.Type {
		case ChangePage:
			pagesChanged = true
			cssOnly = false
		case ChangeAsset:
			cssOnly = false
		}
	}

	if pagesChanged {
		start := time.Now()
		if err := l.app.Reload(ctx); err != nil {
			l.logger.Error("reload failed, keeping previous routes", "error", err)
			l.reload.NotifyError(err.Error())
			return
		}
		l.logger.Info("routes rebuilt", "duration", time.Since(start).Round(time.Millisecond))
		l.reload.ClearError()
		l.reload.NotifyReload()
		return
	}

	if cssOnly {
		for _, c := range batch {
			l.reload.NotifyCSS(c.Path)
		}
		return
	}
	l.reload.NotifyReload()
}

// Close stops watching and disconnects browsers.
func (l *Loop) Close() error {
	l.reload.Close()
	return l.watcher.Close()
}
