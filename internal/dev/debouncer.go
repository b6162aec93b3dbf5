package dev

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects changes and emits them as one batch after a quiet
// period. Several events for one path within the window collapse into the
// latest.
type Debouncer struct {
	interval time.Duration
	changes  map[string]Change
	mu       sync.Mutex
	timer    *time.Timer
	output   chan []Change
	closed   bool
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		changes:  make(map[string]Change),
		output:   make(chan []Change, 16),
	}
}

// Output returns the channel receiving batches, sorted by path.
func (d *Debouncer) Output() <-chan []Change {
	return d.output
}

// Add records a change and restarts the quiet period.
func (d *Debouncer) Add(c Change) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.changes[c.Path] = c
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || len(d.changes) == 0 {
		return
	}

	batch := make([]Change, 0, len(d.changes))
	for _, c := range d.changes {
		batch = append(batch, c)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	select {
	case d.output <- batch:
		d.changes = make(map[string]Change)
	default:
		// The consumer is behind. Keep the changes and retry after another
		// interval; later events for the same paths still replace them.
		d.timer = time.AfterFunc(d.interval, d.flush)
	}
}

// Close stops pending flushes and closes the output channel.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
