// Package dev provides the development loop: file watching and browser
// hot reload.
//
// The loop consists of:
//
//   - Watcher: recursive fsnotify watcher with a debouncer
//   - ReloadServer: notifies browsers of changes via WebSocket
//   - Loop: rebuilds the route table when pages change and tells browsers
//     to reload, or shows an error overlay when the new pages are invalid
//
// # Usage
//
//	loop, err := dev.NewLoop(dev.LoopConfig{
//	    App:      app,
//	    Paths:    cfg.WatchPaths(),
//	    Debounce: cfg.DebounceDuration(),
//	})
//	if err != nil {
//	    return err
//	}
//	defer loop.Close()
//	go loop.Run(ctx)
//
// Pages served in dev mode include DevClientScript, which connects to
// ReloadPath and reloads the page on request.
package dev
