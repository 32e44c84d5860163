// Package watcher turns filesystem changes in a document export directory
// into save notifications.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before changed files are reported.
// Exports are often written in bursts (save plus autogenerated sidecars).
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a directory tree and reports changed files after a
// debounce window. Matching is delegated to the filter func so the caller
// decides which files count as document exports.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	filter   func(path string) bool
	debounce time.Duration
	logger   *zap.Logger

	callback func(files []string)
	cancel   context.CancelFunc
	doneCh   chan struct{}
	stopOnce sync.Once

	mu          sync.Mutex
	accumulated map[string]bool
	timer       *time.Timer
}

// New creates a watcher over root. filter may be nil to accept every file.
func New(root string, filter func(path string) bool, logger *zap.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = func(string) bool { return true }
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		fs:          fs,
		root:        root,
		filter:      filter,
		debounce:    DefaultDebounce,
		logger:      logger,
		doneCh:      make(chan struct{}),
		accumulated: make(map[string]bool),
	}
	if err := w.addRecursively(root); err != nil {
		fs.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching. callback receives the accumulated changed files
// after each debounce window, on the watch goroutine.
func (w *Watcher) Start(ctx context.Context, callback func(files []string)) {
	w.callback = callback
	ctx, w.cancel = context.WithCancel(ctx)
	go w.watch(ctx)
}

// Stop shuts the watcher down and waits for the watch goroutine to exit.
// Idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			// New directories join the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursively(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory",
							zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.filter(event.Name) {
				continue
			}

			w.mu.Lock()
			w.accumulated[event.Name] = true
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.debounce, func() {
				select {
				case fireCh <- struct{}{}:
				default:
				}
			})
			w.mu.Unlock()

		case <-fireCh:
			w.fire()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if len(w.accumulated) == 0 {
		w.mu.Unlock()
		return
	}
	files := make([]string, 0, len(w.accumulated))
	for f := range w.accumulated {
		files = append(files, f)
	}
	w.accumulated = make(map[string]bool)
	w.mu.Unlock()

	if w.callback != nil {
		w.callback(files)
	}
}

func (w *Watcher) addRecursively(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}
