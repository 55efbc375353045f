// Package watch re-triggers a solve when the map file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of events one editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// ErrAlreadyStarted is returned by a second Start
var ErrAlreadyStarted = errors.New("watch: already started")

// Watcher calls onChange once per burst of writes to a single file.
//
// The parent directory is watched rather than the file, so editors that
// save by writing a temp file and renaming it over the original are seen.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(path string)
	log      zerolog.Logger

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	fired   int
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period before onChange fires
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// New creates a watcher for path. Nothing is observed until Start.
func New(path string, onChange func(path string), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: DefaultDebounce,
		onChange: onChange,
		log:      zerolog.Nop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It returns once the directory is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrAlreadyStarted
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(w.path), err)
	}
	w.running = true

	go w.run(ctx)

	w.log.Info().Str("map", w.path).Dur("debounce", w.debounce).Msg("Watching map file")
	return nil
}

// Stop ends the event loop and releases the OS watch. Safe to call more
// than once and without Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Error().Err(err).Msg("Failed to close watcher")
	}
}

// Fired returns how many times onChange has been called
func (w *Watcher) Fired() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer   *time.Timer
		pending <-chan time.Time // nil while no change is waiting
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug().Str("op", event.Op.String()).Str("path", event.Name).Msg("Map file event")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("Watcher error")

		case <-pending:
			pending = nil
			w.mu.Lock()
			w.fired++
			w.mu.Unlock()

			w.log.Info().Str("map", w.path).Msg("Map file changed")
			w.onChange(w.path)
		}
	}
}

// relevant keeps writes and creations of the watched file
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
