package catalog

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a catalog override file and invokes a callback when it
// changes. The stage catalog is fixed for the lifetime of the engine, so
// the callback's job is to tell the operator a restart is needed, not to
// hot-swap stages under live processes.
type Watcher struct {
	path     string
	callback func(path string)
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher creates a watcher for the given catalog file.
func NewWatcher(path string, callback func(path string)) *Watcher {
	return &Watcher{
		path:     path,
		callback: callback,
		done:     make(chan struct{}),
	}
}

// Start begins watching. Editors replace files instead of writing in place,
// so the watch is on the parent directory. Call Stop to clean up.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("catalog: failed to watch %s: %w", w.path, err)
	}
	w.watcher = fw

	go w.loop()
	log.Printf("catalog: watching %s for changes", w.path)
	return nil
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() {
	if w.watcher != nil {
		w.watcher.Close()
	}
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Saving a file fires several events in quick succession; coalesce them.
	var debounce *time.Timer
	for {
		select {
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if evt.Name != w.path || evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, func() {
				if w.callback != nil {
					w.callback(w.path)
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("catalog: watcher error: %v", err)
		}
	}
}
