package drive

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pollInterval bounds how long a disconnection can go unnoticed when
// the filesystem notification is missed (common with abrupt unplugs).
const pollInterval = 2 * time.Second

// Watcher signals when a destination root disappears. It combines an
// fsnotify watch on the root's parent directory with periodic stat
// polling, since an unplugged drive does not always deliver an event.
type Watcher struct {
	root string
	fsw  *fsnotify.Watcher

	gone chan struct{}
	done chan struct{}
	once sync.Once
}

// NewWatcher starts watching root for disconnection.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root: filepath.Clean(root),
		fsw:  fsw,
		gone: make(chan struct{}),
		done: make(chan struct{}),
	}

	// Best effort: the parent may itself be a mount root we cannot
	// watch. Polling still covers disconnection.
	_ = fsw.Add(filepath.Dir(w.root))

	go w.loop()
	return w, nil
}

// Gone returns a channel that is closed once the root disappears.
func (w *Watcher) Gone() <-chan struct{} {
	return w.gone
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == w.root && ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.signal()
				return
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; polling keeps covering.
		case <-ticker.C:
			if Check(w.root) != nil {
				w.signal()
				return
			}
		}
	}
}

func (w *Watcher) signal() {
	select {
	case <-w.done:
	default:
		close(w.gone)
	}
}
