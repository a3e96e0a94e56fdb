// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package detector

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tomtom215/stockpulse/internal/logging"
)

// Watcher is a push trigger. Start arms it; Close stops it, waiting at most
// timeout for the notification goroutine to exit.
type Watcher interface {
	Start() error
	Close(timeout time.Duration) error
}

// WatcherFactory builds the push trigger for path. onChange is invoked after
// each debounced burst of changes.
type WatcherFactory func(path string, debounce time.Duration, onChange func()) Watcher

// NewFileWatcherFactory returns the fsnotify-backed factory.
func NewFileWatcherFactory() WatcherFactory {
	return func(path string, debounce time.Duration, onChange func()) Watcher {
		return NewFileWatcher(path, debounce, onChange)
	}
}

// FileWatcher notifies on changes to one file by watching its parent
// directory, which also catches editors and producers that replace the file
// through a rename.
type FileWatcher struct {
	path     string
	debounce time.Duration
	onChange func()

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
	exited  chan struct{}
	closed  bool
}

// NewFileWatcher creates a watcher for path. It does nothing until Start.
func NewFileWatcher(path string, debounce time.Duration, onChange func()) *FileWatcher {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &FileWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

// Start creates the fsnotify watcher and begins listening. An error means
// notifications are unavailable in this environment.
func (w *FileWatcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	logging.Debug().
		Str("dir", dir).
		Str("file", filepath.Base(w.path)).
		Msg("Watching directory for source changes")

	go w.loop(fw)
	return nil
}

func (w *FileWatcher) loop(fw *fsnotify.Watcher) {
	defer close(w.exited)
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if w.matches(event) {
				w.schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logging.Warn().Err(err).Msg("File watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *FileWatcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) ||
		event.Has(fsnotify.Chmod)
}

// schedule restarts the debounce window.
func (w *FileWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.debounce <= 0 {
		go w.fire()
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *FileWatcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}
	if w.onChange != nil {
		w.onChange()
	}
}

// Close stops the watcher. It returns an error if the listener did not exit
// within timeout; the process is not held up waiting for it.
func (w *FileWatcher) Close(timeout time.Duration) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	if w.timer != nil {
		w.timer.Stop()
	}
	fw := w.watcher
	w.mu.Unlock()

	if fw == nil {
		return nil
	}

	closeErr := make(chan error, 1)
	go func() { closeErr <- fw.Close() }()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case <-w.exited:
	case <-deadline.C:
		return fmt.Errorf("file watcher did not stop within %s", timeout)
	}
	select {
	case err := <-closeErr:
		return err
	case <-deadline.C:
		return fmt.Errorf("file watcher did not stop within %s", timeout)
	}
}
