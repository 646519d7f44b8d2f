package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last write before
// reloading.
const DefaultDebounce = 250 * time.Millisecond

// Watch reloads the catalog file whenever it changes and hands the new
// entries to onChange. The parent directory is watched so editors that
// replace the file through a rename are still seen. Bursts of events are
// collapsed into one reload. Files that fail to load are logged and
// skipped; the previous catalog stays in effect. Watch blocks until ctx is
// done.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func([]Entry)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher error", "path", abs, "error", err)
		case <-timer.C:
			entries, err := LoadFile(abs)
			if err != nil {
				slog.Warn("catalog reload skipped", "path", abs, "error", err)
				continue
			}
			slog.Info("catalog file changed", "path", abs, "entries", len(entries))
			onChange(entries)
		}
	}
}
