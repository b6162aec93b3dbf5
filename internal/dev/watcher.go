package dev

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangePage ChangeType = iota
	ChangeCSS
	ChangeAsset
)

func (t ChangeType) String() string {
	switch t {
	case ChangePage:
		return "page"
	case ChangeCSS:
		return "css"
	default:
		return "asset"
	}
}

// Change represents a detected file change.
type Change struct {
	Path    string
	Type    ChangeType
	Removed bool
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch recursively. Missing paths are
	// skipped.
	Paths []string

	// Ignore patterns to skip. A pattern without "/" matches a single path
	// segment (name or glob); a pattern with "/" is a doublestar glob over
	// the slash-separated path.
	Ignore []string

	// PageExt is the page extension (default ".html").
	PageExt string

	// Debounce is the quiet period before a batch is emitted.
	Debounce time.Duration

	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	"tmp",
	"*.tmp",
	"*.swp",
	"*~",
	".#*",
}

// Watcher monitors directory trees for changes.
type Watcher struct {
	config    WatcherConfig
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	logger    *slog.Logger
}

// NewWatcher creates a recursive watcher over config.Paths.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if config.PageExt == "" {
		config.PageExt = ".html"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		config:    config,
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(config.Debounce),
		logger:    config.Logger,
	}

	for _, root := range config.Paths {
		if _, err := os.Stat(root); err != nil {
			w.logger.Debug("watch path skipped", "path", root, "error", err)
			continue
		}
		if err := w.addTree(root); err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree watches root and every non-ignored directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Events returns the channel receiving debounced batches.
func (w *Watcher) Events() <-chan []Change {
	return w.debouncer.Output()
}

// Start processes file system events until the watcher is closed. Call it
// in a goroutine.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.shouldIgnore(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			// Files created together with the directory have no events of
			// their own.
			w.debouncer.Add(Change{Path: path, Type: ChangePage})
			return
		}
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.debouncer.Add(Change{Path: path, Type: w.classify(path)})
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.debouncer.Add(Change{Path: path, Type: w.classify(path), Removed: true})
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	err := w.fsWatcher.Close()
	w.debouncer.Close()
	return err
}

// shouldIgnore checks if a path should be ignored. Patterns apply to the
// part of the path below its watch root.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	normalized := filepath.ToSlash(w.relative(fullPath))
	if normalized == "." {
		return false
	}
	segments := strings.Split(normalized, "/")

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match("**/"+strings.TrimPrefix(pattern, "/"), normalized); ok {
				return true
			}
			continue
		}

		for _, seg := range segments {
			if seg == pattern {
				return true
			}
			if ok, _ := doublestar.Match(pattern, seg); ok {
				return true
			}
		}
	}
	return false
}

// relative returns fullPath relative to the watch root containing it.
func (w *Watcher) relative(fullPath string) string {
	for _, root := range w.config.Paths {
		rel, err := filepath.Rel(root, fullPath)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return rel
		}
	}
	return strings.TrimPrefix(fullPath, string(filepath.Separator))
}

// classify determines the type of change based on file extension.
// A file without an extension is assumed to be a directory that
// disappeared, which may have held pages.
func (w *Watcher) classify(path string) ChangeType {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == strings.ToLower(w.config.PageExt), ext == "":
		return ChangePage
	case ext == ".css" || ext == ".scss" || ext == ".sass" || ext == ".less":
		return ChangeCSS
	default:
		return ChangeAsset
	}
}

// CollectWatchPaths cleans and deduplicates watch paths.
func CollectWatchPaths(paths ...string) []string {
	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}
