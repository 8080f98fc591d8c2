// Package wallpaper watches a wallpaper image and reports when it changes.
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

type ChangeFunc func(path string)

// Watcher watches the parent directory of a single file so that editors and
// wallpaper tools that replace the file atomically are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange ChangeFunc
	logger   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewWatcher(path string, onChange ChangeFunc, logger *slog.Logger) (*Watcher, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("wallpaper path is required")
	}
	if onChange == nil {
		return nil, errors.New("change callback is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve wallpaper path: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(absPath),
		debounce: DefaultDebounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

func (w *Watcher) Path() string {
	return w.path
}

// SetDebounce must be called before Start.
func (w *Watcher) SetDebounce(debounce time.Duration) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w.debounce = debounce
}

// Start begins watching. It returns once the watch is registered; events are
// delivered on a background goroutine until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		return errors.New("wallpaper watcher already started")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = watcher
	w.done = make(chan struct{})
	go w.loop(ctx, watcher, w.done)

	w.logger.Debug("watching wallpaper", "path", w.path)
	return nil
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	watcher := w.watcher
	done := w.done
	w.watcher = nil
	w.done = nil
	w.mu.Unlock()

	if watcher == nil {
		return nil
	}

	err := watcher.Close()
	<-done
	return err
}

func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.onChange(w.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("wallpaper watcher error", "path", w.path, "err", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
