package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"focusdeck/internal/ui/preferences"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads settings whenever the file changes on disk and passes the
// result to onChange. It blocks until ctx is done. The parent directory is
// watched so that editors replacing the file are seen too.
func (store *Store) Watch(ctx context.Context, logger *slog.Logger, onChange func(preferences.Settings)) error {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch settings directory: %w", err)
	}

	name := filepath.Base(store.path)
	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			reload = time.After(reloadDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("settings watcher error", slog.String("error", err.Error()))
		case <-reload:
			reload = nil
			settings, err := store.Load()
			if err != nil {
				logger.Warn("reload settings", slog.String("path", store.path), slog.String("error", err.Error()))
				continue
			}
			logger.Debug("settings reloaded", slog.String("path", store.path))
			onChange(settings)
		}
	}
}
