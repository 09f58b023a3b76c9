// Package watch re-runs a callback when files in a set of directories change.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/satishbabariya/arangomigrate/internal/logging"
)

// DefaultDebounce groups bursts of editor writes into a single run.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches directories for changes to files with a given extension.
type Watcher struct {
	ext      string
	debounce time.Duration
	callback func() error
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// Options configures a Watcher.
type Options struct {
	// Ext filters the files triggering the callback, all files when empty.
	Ext      string
	Debounce time.Duration
	Logger   *slog.Logger
}

// NewWatcher creates a watcher over dirs.
func NewWatcher(dirs []string, callback func() error, opts Options) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	for _, dir := range dirs {
		absPath, err := filepath.Abs(dir)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		if err := watcher.Add(absPath); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		ext:      opts.Ext,
		debounce: opts.Debounce,
		callback: callback,
		logger:   logging.OrDiscard(opts.Logger),
		watcher:  watcher,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the callback once, then again after every change.
func (w *Watcher) Start() error {
	if err := w.callback(); err != nil {
		w.logger.Error("watch callback failed", "error", err)
	}

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()
	var debounceCh <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
			debounceTimer.Reset(w.debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			if err := w.callback(); err != nil {
				w.logger.Error("watch callback failed", "error", err)
			}
			debounceCh = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.ext == "" || filepath.Ext(base) == w.ext
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
