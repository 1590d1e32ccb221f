package cache

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// changeOps are the events that mean a watched file's content changed.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Watcher calls a function when a single file changes on disk. The parent
// directory is watched so editors and tools that replace the file atomically
// are still seen. Bursts of events within the debounce window are reported
// once.
type Watcher struct {
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	path     string
	onChange func(path string)
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// DefaultDebounce is the quiet period used by NewWatcher.
const DefaultDebounce = 250 * time.Millisecond

// NewWatcher starts watching path. onChange runs on its own goroutine.
func NewWatcher(logger *slog.Logger, path string, onChange func(path string)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		logger:   logger.With(slog.String("component", "source_watcher")),
		watcher:  fw,
		path:     abs,
		onChange: onChange,
		debounce: DefaultDebounce,
	}, nil
}

// Run delivers change notifications until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "watching dataset source", slog.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op&changeOps == 0 {
				continue
			}
			w.logger.DebugContext(ctx, "dataset source event",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "dataset source watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Info("dataset source changed", slog.String("path", w.path))
		w.onChange(w.path)
	})
}

// Close stops watching and cancels a pending notification.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
