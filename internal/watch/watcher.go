// Package watch reports changes to one results file, debounced.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is one file system change to the watched file.
type Event struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

// Handler is called with the events of one debounce window. It runs on the
// watcher's goroutine; calls never overlap.
type Handler func(events []Event)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long the file must stay quiet before the handler runs.
	// Default: 100ms
	Debounce time.Duration

	// BufferSize is the capacity of the event channel.
	// Default: 256
	BufferSize int

	Logger *slog.Logger
}

// DefaultOptions returns a 100ms debounce.
func DefaultOptions() Options {
	return Options{
		Debounce:   100 * time.Millisecond,
		BufferSize: 256,
		Logger:     slog.Default(),
	}
}

// Watcher watches a single file.
//
// The exploration tool, and editors, may replace the file instead of writing
// it in place, which drops an inode watch. The watcher therefore watches the
// parent directory and filters events by name.
//
// Safe for concurrent use.
type Watcher struct {
	path     string
	dir      string
	watcher  *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	events   chan Event
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.RWMutex
	watching bool
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, handler Handler, opts *Options) (*Watcher, error) {
	o := DefaultOptions()
	if opts != nil {
		if opts.Debounce > 0 {
			o.Debounce = opts.Debounce
		}
		if opts.BufferSize > 0 {
			o.BufferSize = opts.BufferSize
		}
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		watcher:  fw,
		handler:  handler,
		debounce: o.Debounce,
		logger:   o.Logger,
		events:   make(chan Event, o.BufferSize),
		done:     make(chan struct{}),
	}, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching. Watching ends on Stop or when ctx is canceled; a
// pending batch is flushed first.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	w.logger.Debug("watching results file", "path", w.path, "debounce", w.debounce)
	return nil
}

// Stop stops watching and waits for a running handler to return.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
		w.wg.Wait()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching reports whether Start succeeded and Stop was not called.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op == fsnotify.Chmod {
				continue
			}

			select {
			case w.events <- Event{Path: w.path, Op: ev.Op, Time: time.Now()}:
			default:
				// The debouncer is behind; a pending batch already covers this change.
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()

	var batch []Event
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 && w.handler != nil {
			w.handler(batch)
		}
		batch = nil
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case ev := <-w.events:
			batch = append(batch, ev)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}
