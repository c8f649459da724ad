package config

import (
	"errors"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/morphogen/engine/core"
)

// Watcher reloads the tuning file on change and notifies the pipeline so
// it can drop its caches: any constant change invalidates every
// generated bundle.
type Watcher struct {
	path     string
	onChange func(*Tuning)

	mutex    sync.Mutex
	fsnotify *fsnotify.Watcher
	done     chan struct{}
	isClosed bool
}

// NewWatcher starts watching the tuning file. onChange runs on the
// watcher goroutine with the freshly loaded tuning.
func NewWatcher(path string, onChange func(*Tuning)) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}

	if err := fsWatch.Add(path); err != nil {
		fsWatch.Close()
		return nil, err
	}

	go w.start()
	return w, nil
}

func (w *Watcher) start() {
	for {
		select {
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			t, err := Load(w.path)
			if err != nil {
				core.LogWarn("config: reload of %s failed: %s", w.path, err.Error())
				continue
			}
			core.LogInfo("config: tuning reloaded from %s", w.path)
			w.onChange(t)
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("config: watch error: %s", err.Error())
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher. Idempotent.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isClosed {
		return errors.New("watcher instance already closed")
	}
	w.isClosed = true
	close(w.done)
	return w.fsnotify.Close()
}
