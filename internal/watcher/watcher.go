package watcher

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler is called with the script files that changed or went away
type ChangeHandler func(changed, removed []string)

// Filter decides which paths the watcher cares about
type Filter interface {
	Matches(path string) bool
	IgnoredDir(path string) bool
}

// Watcher monitors script files for changes using fsnotify
type Watcher struct {
	watcher   *fsnotify.Watcher
	rootPath  string
	filter    Filter
	debouncer *Debouncer
	done      chan struct{}
}

// New creates a new file watcher for the root path
func New(rootPath string, filter Filter, debounce time.Duration, handler ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		rootPath: rootPath,
		filter:   filter,
		done:     make(chan struct{}),
	}
	w.debouncer = NewDebouncer(debounce, func(changed, removed []string) {
		log.Printf("script changes: %d changed, %d removed", len(changed), len(removed))
		handler(changed, removed)
	})

	return w, nil
}

// Start watches every non-ignored directory under the root
func (w *Watcher) Start() error {
	err := filepath.WalkDir(w.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !d.IsDir() {
			return nil
		}
		if w.filter.IgnoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("failed to watch %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.eventLoop()

	log.Printf("file watcher started for %s", w.rootPath)
	return nil
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// New directories need their own watch
	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			if !w.filter.IgnoredDir(path) {
				if err := w.watcher.Add(path); err != nil {
					log.Printf("failed to watch new directory %s: %v", path, err)
				}
			}
			return
		}
	}

	if !w.filter.Matches(path) {
		return
	}
	w.debouncer.Add(path, event.Op)
}

// Close stops the watcher
func (w *Watcher) Close() error {
	close(w.done)
	w.debouncer.Stop()
	return w.watcher.Close()
}
