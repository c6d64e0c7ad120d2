package dataset

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/emotion-constellation/constellation-core/internal/metrics"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
)

// ReloadHandler receives every successfully reloaded dataset. It runs on
// the watcher goroutine and must hand the dataset off, typically by
// enqueueing SwapCommand on the frame scheduler.
type ReloadHandler func(ds *Dataset)

// Watcher reloads the active locale's data file when it changes on disk.
// Bursts of writes are coalesced into one reload per debounce window.
type Watcher struct {
	loader   *Loader
	handler  ReloadHandler
	debounce time.Duration
	fs       *fsnotify.Watcher
	metrics  *metrics.Collector
	logger   *slog.Logger

	changes  chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	locale   string
	watching bool
}

// NewWatcher creates a watcher for locale in the loader's directory
func NewWatcher(loader *Loader, locale string, debounce time.Duration, handler ReloadHandler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		loader:   loader,
		handler:  handler,
		debounce: debounce,
		fs:       fw,
		logger:   logger.Component("dataset-watcher"),
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		locale:   locale,
	}, nil
}

// SetLogger sets the watcher's logger
func (w *Watcher) SetLogger(l *slog.Logger) {
	w.logger = l
}

// SetMetrics attaches a metrics collector for reload outcomes
func (w *Watcher) SetMetrics(m *metrics.Collector) {
	w.metrics = m
}

// Start watches the data directory. Editors often replace files instead of
// writing them, so the directory is watched and events are filtered by name.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.fs.Add(w.loader.Dir()); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	w.logger.Info("watching dataset", "dir", w.loader.Dir(), "locale", w.Locale())
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fs.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching reports whether Start has been called and Stop has not
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// Locale returns the locale being watched
func (w *Watcher) Locale() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.locale
}

// SetLocale switches the watched locale and reloads immediately
func (w *Watcher) SetLocale(locale string) error {
	w.mu.Lock()
	w.locale = locale
	w.mu.Unlock()
	return w.Reload()
}

// Reload loads the current locale and passes it to the handler
func (w *Watcher) Reload() error {
	ds, err := w.loader.Load(w.Locale())
	w.metrics.DatasetReloaded(err == nil)
	if err != nil {
		w.logger.Error("dataset reload failed", "locale", w.Locale(), "error", err)
		return err
	}
	if w.handler != nil {
		w.handler(ds)
	}
	return nil
}

func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	return base == FileName(w.Locale()) || base == FileName(DefaultLocale)
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dataset watcher error", "error", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.changes:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			_ = w.Reload()
		}
	}
}
