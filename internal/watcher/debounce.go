package watcher

import (
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debouncer batches file change events so a burst of writes to the same
// script triggers a single reload
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]fsnotify.Op
	interval time.Duration
	timer    *time.Timer
	flush    ChangeHandler
}

// NewDebouncer creates a debouncer that calls flush once the interval has
// passed without new events
func NewDebouncer(interval time.Duration, flush ChangeHandler) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]fsnotify.Op),
		interval: interval,
		flush:    flush,
	}
}

// Add records a file change event and restarts the quiet-period timer
func (d *Debouncer) Add(path string, op fsnotify.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.pending[path]
	// A create or write after a rename or remove is an atomic save: the
	// file is back, so it counts as changed
	if op.Has(fsnotify.Create) || op.Has(fsnotify.Write) {
		prev &^= fsnotify.Remove | fsnotify.Rename
	}
	d.pending[path] = prev | op

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

// Stop cancels any pending flush
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = make(map[string]fsnotify.Op)
}

func (d *Debouncer) fire() {
	changed, removed := d.drain()
	if len(changed) > 0 || len(removed) > 0 {
		d.flush(changed, removed)
	}
}

// drain splits pending events into changed and removed paths and clears them
func (d *Debouncer) drain() (changed, removed []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for path, op := range d.pending {
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			removed = append(removed, path)
		} else if op.Has(fsnotify.Write) || op.Has(fsnotify.Create) {
			changed = append(changed, path)
		}
	}
	d.pending = make(map[string]fsnotify.Op)

	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed
}
