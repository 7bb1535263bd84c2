// Package watch re-runs a sort pass whenever files land in the source directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sdejongh/aethsort/pkg/logging"
	"github.com/sdejongh/aethsort/pkg/models"
)

// Runner performs one sort pass
type Runner interface {
	SortFiles(ctx context.Context) (*models.SortReport, error)
}

// PassFunc receives the result of every pass
type PassFunc func(report *models.SortReport, err error)

// Watcher triggers a pass after the source directory has been quiet for
// the debounce period. Passes never overlap.
type Watcher struct {
	dir      string
	runner   Runner
	logger   logging.Logger
	debounce time.Duration
	onPass   PassFunc
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period before a pass
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithPassFunc registers a callback invoked after every pass
func WithPassFunc(fn PassFunc) Option {
	return func(w *Watcher) {
		w.onPass = fn
	}
}

// New creates a watcher for dir
func New(dir string, runner Runner, logger logging.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	w := &Watcher{
		dir:      dir,
		runner:   runner,
		logger:   logger,
		debounce: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run sorts once, then keeps sorting after changes until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.logger.Info(ctx, "Watching "+w.dir, logging.Fields{"debounce": w.debounce.String()})
	w.pass(ctx)

	return w.loop(ctx, fsw.Events, fsw.Errors)
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	// Stop and Reset never leave a stale tick behind since Go 1.23
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info(ctx, "Stopped watching "+w.dir, nil)
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug(ctx, "Change detected", logging.Fields{"path": event.Name, "op": event.Op.String()})
			timer.Reset(w.debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Error(ctx, "Watcher error", err, nil)

		case <-timer.C:
			w.pass(ctx)
		}
	}
}

// relevant reports whether event may have brought a new regular file into the directory
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (w *Watcher) pass(ctx context.Context) {
	report, err := w.runner.SortFiles(ctx)
	if err != nil && ctx.Err() == nil {
		w.logger.Error(ctx, "Sort pass failed", err, nil)
	}
	if w.onPass != nil {
		w.onPass(report, err)
	}
}
