// Package watch re-runs a callback when files in a directory change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"docsim/internal/logging"
)

// DefaultDebounce coalesces bursts of file events into one refresh.
const DefaultDebounce = 500 * time.Millisecond

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Options configures Run.
type Options struct {
	Debounce time.Duration
	// Filter selects the file names that trigger a refresh. Nil accepts all.
	Filter func(name string) bool
	Logger *slog.Logger
}

// Run calls refresh once, then again after each debounced burst of
// create, write, remove or rename events in dir. Refresh errors are logged and
// do not stop the watch. Run returns nil when ctx is cancelled.
func Run(ctx context.Context, dir string, opts Options, refresh func(context.Context) error) error {
	if refresh == nil {
		return errors.New("watch: refresh callback is nil")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := logging.NewComponentLogger(opts.Logger, "watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	run := func(reason string) {
		logger.Debug("refreshing", logging.String("reason", reason))
		if err := refresh(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("refresh failed",
				logging.String(logging.FieldEventType, "refresh_failed"),
				logging.Error(err),
			)
		}
	}
	run("initial")
	logger.Info("watching directory", logging.String("dir", dir), logging.Duration("debounce", debounce))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(relevantOps) {
				continue
			}
			if opts.Filter != nil && !opts.Filter(event.Name) {
				continue
			}
			logger.Debug("file event",
				logging.String(logging.FieldDocument, event.Name),
				logging.String("op", event.Op.String()),
			)
			timer.Reset(debounce)
			pending = true
		case <-timer.C:
			if pending {
				pending = false
				run("change")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logging.Error(err))
		}
	}
}
