// Package watch re-runs generation when files under the project root
// change, with debouncing to absorb editor save bursts.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/kurtatter/cmforai/internal/logger"
)

var log = logger.ForComponent("watcher")

const (
	DefaultDebounceWindow = 500 * time.Millisecond
	DefaultMaxBatchSize   = 100
)

// Config controls which paths are watched and how events are batched.
type Config struct {
	IgnorePatterns []string
	WatchHidden    bool
	DebounceWindow time.Duration
	MaxBatchSize   int
}

// Watcher recursively watches a project root. Each debounced batch of
// changes triggers the OnChange callback once.
type Watcher struct {
	config      Config
	fsWatcher   *fsnotify.Watcher
	fsWatcherMu sync.Mutex
	debouncer   *Debouncer
	onChange    func([]FileEvent)
	mu          sync.Mutex
	running     bool
	ctx         context.Context
	cancel      context.CancelFunc
}

func New(config Config, onChange func([]FileEvent)) (*Watcher, error) {
	if config.DebounceWindow <= 0 {
		config.DebounceWindow = DefaultDebounceWindow
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = DefaultMaxBatchSize
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config:    config,
		fsWatcher: fsWatcher,
		onChange:  onChange,
	}
	w.debouncer = NewDebouncer(config.DebounceWindow, config.MaxBatchSize, w.flush)

	return w, nil
}

// AddRoot watches a directory tree. Ignored subtrees are never added, so
// noisy directories like node_modules cost nothing.
func (w *Watcher) AddRoot(path string) error {
	log.Info("watching root", "path", path)

	if err := w.addToWatcher(path); err != nil {
		return err
	}
	return w.walkAndAdd(path)
}

func (w *Watcher) addToWatcher(path string) error {
	w.fsWatcherMu.Lock()
	defer w.fsWatcherMu.Unlock()
	return w.fsWatcher.Add(path)
}

func (w *Watcher) walkAndAdd(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		log.Debug("read dir failed", "path", path, "error", err)
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fullPath := filepath.Join(path, entry.Name())
		if w.shouldIgnore(fullPath) {
			continue
		}
		if err := w.addToWatcher(fullPath); err != nil {
			log.Debug("watch dir failed", "path", fullPath, "error", err)
			continue
		}
		w.walkAndAdd(fullPath)
	}

	return nil
}

func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	go w.handleEvents()
	return nil
}

func (w *Watcher) handleEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.shouldIgnore(event.Name) {
						if err := w.addToWatcher(event.Name); err == nil {
							w.walkAndAdd(event.Name)
						}
					}
				}
			}

			if fe := w.convertEvent(event); fe != nil {
				w.debouncer.Add(*fe)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Debug("watcher error", "error", err)
		}
	}
}

func (w *Watcher) convertEvent(event fsnotify.Event) *FileEvent {
	if w.shouldIgnore(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write),
		event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
	default:
		return nil
	}

	return &FileEvent{
		Path:      event.Name,
		Op:        event.Op.String(),
		Timestamp: time.Now(),
	}
}

func (w *Watcher) flush(events []FileEvent) {
	log.Info("changes detected", "count", len(events))
	if w.onChange != nil {
		w.onChange(events)
	}
}

func (w *Watcher) shouldIgnore(path string) bool {
	basename := filepath.Base(path)

	if !w.config.WatchHidden && strings.HasPrefix(basename, ".") {
		return true
	}

	for _, pattern := range w.config.IgnorePatterns {
		if match, _ := doublestar.Match(pattern, path); match {
			return true
		}
		if match, _ := doublestar.Match(pattern, basename); match {
			return true
		}
	}

	return false
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.cancel()
	w.mu.Unlock()

	w.debouncer.Stop()

	w.fsWatcherMu.Lock()
	defer w.fsWatcherMu.Unlock()
	return w.fsWatcher.Close()
}
