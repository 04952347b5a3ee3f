// Package watch reruns the packaging hook when ClojureScript sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
	"git.home.luguber.info/inful/slscljs/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc performs one rebuild. Errors are logged; watching continues.
type BuildFunc func(ctx context.Context) error

// Watcher watches source directories and triggers single-flight rebuilds.
type Watcher struct {
	paths    []string
	build    BuildFunc
	debounce time.Duration
	interval time.Duration
	initial  bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInitialBuild runs build once before waiting for changes.
func WithInitialBuild() Option {
	return func(w *Watcher) { w.initial = true }
}

// WithInterval also rebuilds every d, for mounts where file events are not
// delivered (network and container volumes).
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

func New(paths []string, build BuildFunc, opts ...Option) *Watcher {
	w := &Watcher{paths: paths, build: build, debounce: DefaultDebounce}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run blocks until ctx is canceled or the underlying watcher fails to start.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := w.setupFileWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	rebuildReq, trigger := newDebouncer(w.debounce)
	done := startRebuildWorker(ctx, rebuildReq, w.rebuild)
	if w.initial {
		request(rebuildReq)
	}
	if w.interval > 0 {
		scheduler, err := schedulePeriodicRebuild(w.interval, rebuildReq)
		if err != nil {
			return err
		}
		defer func() { _ = scheduler.Shutdown() }()
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watcher")
			<-done
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) setupFileWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.RuntimeError("create file watcher").WithCause(err).Build()
	}
	watched := 0
	for _, root := range w.paths {
		fi, err := os.Stat(root)
		if err != nil || !fi.IsDir() {
			slog.Warn("Skipping watch path", logfields.Path(root))
			continue
		}
		addDirsRecursive(watcher, root)
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return nil, errors.NotFoundError("no watch directory exists").
			WithContext("paths", strings.Join(w.paths, ",")).Build()
	}
	slog.Info(fmt.Sprintf("Watching %d source directories", watched), logfields.Count(watched))
	return watcher, nil
}

func (w *Watcher) rebuild(ctx context.Context) {
	slog.Info("Change detected; rebuilding")
	start := time.Now()
	if err := w.build(ctx); err != nil {
		slog.Warn("rebuild failed", logfields.Duration(time.Since(start)), logfields.Error(err))
		return
	}
	slog.Info("rebuild finished", logfields.Duration(time.Since(start)))
}

// request queues a rebuild unless one is already waiting.
func request(rebuildReq chan struct{}) {
	select {
	case rebuildReq <- struct{}{}:
	default:
	}
}

// schedulePeriodicRebuild queues a rebuild every interval.
func schedulePeriodicRebuild(interval time.Duration, rebuildReq chan struct{}) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, errors.ValidationError("rebuild interval must be positive").
			WithContext("interval", interval.String()).Build()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.RuntimeError("failed to create gocron scheduler").WithCause(err).Build()
	}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(request, rebuildReq),
		gocron.WithName("periodic-rebuild"),
	); err != nil {
		_ = s.Shutdown()
		return nil, errors.RuntimeError("failed to create periodic rebuild job").WithCause(err).
			WithContext("interval", interval.String()).Build()
	}
	s.Start()
	slog.Info("Scheduled periodic rebuild", "interval", interval.String())
	return s, nil
}

// newDebouncer returns a request channel and a trigger that sends one request
// once no trigger has fired for delay.
func newDebouncer(delay time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() { request(rebuildReq) })
	}

	return rebuildReq, trigger
}

// startRebuildWorker runs fn for requests one at a time. rebuildReq holds at
// most one request, so changes arriving while fn runs fold into a single
// follow-up run. The returned channel is closed when the worker exits.
func startRebuildWorker(ctx context.Context, rebuildReq <-chan struct{}, fn func(context.Context)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				fn(ctx)
			}
		}
	}()
	return done
}

func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			// Build output such as target/ appearing under a source root.
			if shouldIgnoreDir(fi.Name()) {
				return
			}
			addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), "op", ev.Op.String())
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && shouldIgnoreDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreDir skips build output and VCS directories below a watch root.
func shouldIgnoreDir(name string) bool {
	switch name {
	case "target", "out", "node_modules", ".serverless", ".git":
		return true
	}
	return strings.HasPrefix(name, ".")
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including emacs lock files (.#name).
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
