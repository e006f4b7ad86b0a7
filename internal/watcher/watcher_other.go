//go:build !darwin && !windows

package watcher

import (
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// maxWatches bounds the inotify watches taken for one root. Directories
// beyond it are not watched.
const maxWatches = 4096

// Watcher watches for filesystem changes using inotify. inotify is not
// recursive, so every directory below the root gets its own watch.
type Watcher struct {
	fsw     *fsnotify.Watcher
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	watched int
}

func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:     fsw,
		eventCh: make(chan Event, eventBuffer),
		done:    make(chan struct{}),
	}, nil
}

func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// AddRecursive watches root and its subdirectories, up to maxWatches
func (w *Watcher) AddRecursive(root string) error {
	if err := w.add(root); err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.watched >= maxWatches {
			return filepath.SkipAll
		}
		// Unreadable directories simply go unwatched
		_ = w.add(path)
		return nil
	})
}

func (w *Watcher) add(path string) error {
	if err := w.fsw.Add(path); err != nil {
		return err
	}
	w.watched++
	return nil
}

func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	var typ EventType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = EventDeleted
	case event.Has(fsnotify.Create):
		typ = EventCreated
	case event.Has(fsnotify.Write):
		typ = EventModified
	default:
		return
	}

	select {
	case w.eventCh <- Event{Type: typ, Path: event.Name}:
	default:
	}
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	close(w.eventCh)
	return err
}
