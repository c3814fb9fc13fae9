// Package watcher reports debounced changes to the library database file.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/folio/internal/log"
)

// DefaultDebounce matches the auto_refresh_debounce default.
const DefaultDebounce = 300 * time.Millisecond

// Config holds watcher configuration options.
type Config struct {
	DBPath      string
	DebounceDur time.Duration
}

// DefaultConfig returns the default debounce for dbPath.
func DefaultConfig(dbPath string) Config {
	return Config{
		DBPath:      dbPath,
		DebounceDur: DefaultDebounce,
	}
}

// Watcher monitors the library database and its WAL for writes made by
// other processes, such as `folio add`. A burst of writes produces a single
// signal once the files have been quiet for the debounce interval.
type Watcher struct {
	fs       *fsnotify.Watcher
	dbPath   string
	names    map[string]struct{}
	debounce time.Duration

	changes  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = DefaultDebounce
	}

	base := filepath.Base(cfg.DBPath)
	return &Watcher{
		fs:     fsw,
		dbPath: cfg.DBPath,
		// SQLite in WAL mode writes the -wal file first and the main file
		// on checkpoint.
		names: map[string]struct{}{
			base:          {},
			base + "-wal": {},
		},
		debounce: cfg.DebounceDur,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directory holding the database. The returned channel
// holds at most one pending signal.
func (w *Watcher) Start() (<-chan struct{}, error) {
	dir := filepath.Dir(w.dbPath)
	if err := w.fs.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Debug(log.CatWatcher, "watching", "dir", dir, "debounce", w.debounce)
	go w.run()
	return w.changes, nil
}

// Stop terminates the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run() {
	var (
		timer  *time.Timer
		fire   <-chan time.Time
		events int
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			events++
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			log.Debug(log.CatWatcher, "library changed", "path", w.dbPath, "events", events)
			events = 0
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err, "path", w.dbPath)
		}
	}
}

// relevant reports whether ev is a write to the database or its WAL. A
// fresh WAL shows up as a create.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	_, ok := w.names[filepath.Base(ev.Name)]
	return ok
}
