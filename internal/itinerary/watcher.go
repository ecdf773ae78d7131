package itinerary

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch observes the canonical itinerary file and calls reload after it
// changes, debounced to collapse editor write bursts. Reload failures are
// logged and the previous itinerary stays in effect; only the initial load
// at startup is allowed to fail loudly.
func Watch(ctx context.Context, path string, logger *slog.Logger, reload func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the parent directory: editors replace files via rename, which
	// drops a watch installed on the file itself.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("itinerary watcher: started", slog.String("path", abs))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	scheduleReload := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("itinerary watcher: stopped")
			return nil

		case <-debounceCh:
			if err := reload(); err != nil {
				logger.Warn("itinerary watcher: reload failed, keeping previous itinerary",
					slog.String("error", err.Error()))
				continue
			}
			logger.Info("itinerary watcher: reloaded", slog.String("path", abs))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			evAbs, relErr := filepath.Abs(ev.Name)
			if relErr != nil || evAbs != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("itinerary watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
