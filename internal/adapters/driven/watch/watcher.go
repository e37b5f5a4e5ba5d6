// Package watch reports changes to an open document file so the viewer can
// reload it.
//
// The parent directory is watched rather than the file itself: editors and
// PDF generators commonly replace files by writing a temporary file and
// renaming it over the original, which drops a watch on the old inode.
// Bursts of events are coalesced into one notification.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/folio/internal/logger"
)

// DefaultDebounce is the quiet period after the last event before a change
// is reported.
const DefaultDebounce = 200 * time.Millisecond

// Change describes a document file change.
type Change struct {
	Path    string
	Removed bool
}

// Watcher watches a single file.
type Watcher struct {
	path     string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a watcher for path. Events are coalesced over debounce;
// zero uses DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: abs, debounce: debounce}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Watch starts watching and returns a channel of changes.
// The channel closes when ctx is done or Close is called.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.mu.Lock()
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.watcher = fw
	w.mu.Unlock()

	changes := make(chan Change, 1)
	go w.loop(ctx, fw, changes)
	return changes, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- Change) {
	defer close(out)
	defer fw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var pending *Change

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			change, relevant := w.classify(event)
			if !relevant {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			pending = &change
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			if pending == nil {
				continue
			}
			select {
			case out <- *pending:
			case <-ctx.Done():
				return
			}
			pending = nil
		}
	}
}

// classify maps an event on the watched directory to a change of the file.
func (w *Watcher) classify(event fsnotify.Event) (Change, bool) {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.path {
		return Change{}, false
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Change{Path: w.path, Removed: true}, true
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		return Change{Path: w.path}, true
	default:
		return Change{}, false
	}
}
