package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period before a reload.
const DefaultDebounceInterval = 100 * time.Millisecond

// Watcher reloads a Page when its template file changes.
//
// The directory holding the file is watched rather than the file itself,
// so editors that save by writing a new file and renaming it over the old
// one keep triggering reloads.
type Watcher struct {
	page     *Page
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	logger   *slog.Logger
}

// NewWatcher creates a watcher for page. The page must have a template
// file.
func NewWatcher(page *Page, interval time.Duration) (*Watcher, error) {
	if page.Path() == "" {
		return nil, fmt.Errorf("page has no template file to watch")
	}
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(page.Path())); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(page.Path()), err)
	}

	return &Watcher{
		page:     page,
		watcher:  fw,
		debounce: NewDebouncer(interval),
		logger:   page.logger,
	}, nil
}

// Watch reloads the page on changes until ctx is done. onReload, when not
// nil, is called after every reload attempt with its result.
func (w *Watcher) Watch(ctx context.Context, onReload func(error)) error {
	defer w.debounce.Stop()
	defer w.watcher.Close()

	target := filepath.Clean(w.page.Path())
	w.logger.Info("page watcher started", "path", target)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("page watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target || event.Op == fsnotify.Chmod {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.debounce.Trigger(func() {
				err := w.page.Reload()
				if err != nil {
					w.logger.Error("page reload failed", "error", err)
				}
				if onReload != nil {
					onReload(err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("page watcher error", "error", err)
		}
	}
}

// Debouncer collects rapid events and runs the last callback only after a
// quiet period.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback after the interval, replacing any pending
// callback.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, callback)
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
