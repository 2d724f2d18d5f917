package scenario

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch hot-reloads the registry as scenario files in dir change, until ctx
// is cancelled. Editors commonly write files in several bursts, so reloads
// are debounced per path.
func Watch(ctx context.Context, registry *Registry, dir string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("scenario: watcher started", slog.String("dir", dir))

	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(200 * time.Millisecond)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("scenario: watcher stopped")
			return nil

		case <-flushCh:
			for path := range pending {
				if err := registry.LoadFile(path); err != nil {
					logger.Warn("scenario: reload failed",
						slog.String("path", path),
						slog.String("error", err.Error()))
					continue
				}
				logger.Debug("scenario: reloaded", slog.String("path", path))
			}
			pending = make(map[string]struct{})

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isScenarioFile(ev.Name) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = struct{}{}
				scheduleFlush()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
				registry.RemoveFile(ev.Name)
				logger.Debug("scenario: removed", slog.String("path", ev.Name))
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("scenario: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
