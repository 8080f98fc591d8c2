package main

import (
	"context"
	"log/slog"
	"sync"

	"prism/internal/wallpaper"
)

// wallpaperWatch keeps a single watcher pointed at the current wallpaper path.
type wallpaperWatch struct {
	ctx      context.Context
	onChange wallpaper.ChangeFunc
	logger   *slog.Logger

	mu      sync.Mutex
	watcher *wallpaper.Watcher
}

func newWallpaperWatch(ctx context.Context, onChange wallpaper.ChangeFunc, logger *slog.Logger) *wallpaperWatch {
	return &wallpaperWatch{ctx: ctx, onChange: onChange, logger: logger}
}

// Switch stops any running watcher and starts one for path. An empty path
// only stops watching.
func (w *wallpaperWatch) Switch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn("close wallpaper watcher", "err", err)
		}
		w.watcher = nil
	}

	if path == "" {
		return nil
	}

	watcher, err := wallpaper.NewWatcher(path, w.onChange, w.logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(w.ctx); err != nil {
		return err
	}

	w.watcher = watcher
	return nil
}

func (w *wallpaperWatch) Close() {
	_ = w.Switch("")
}
