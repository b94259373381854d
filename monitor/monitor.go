// Package monitor auto-queues new video files appearing under a
// watched source folder. It combines fsnotify events on the folder
// itself with periodic recursive rescans, since fsnotify does not
// watch subdirectories.
package monitor

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is how often the source folder is rescanned.
const DefaultInterval = 2 * time.Second

// EnqueueFunc receives each newly discovered file exactly once.
type EnqueueFunc func(path string)

// Monitor watches one source folder.
type Monitor struct {
	dir      string
	exts     map[string]bool
	enqueue  EnqueueFunc
	interval time.Duration
	seen     map[string]bool
}

// New creates a Monitor for dir. Files whose extension is not in exts
// are ignored. Everything already present is picked up on the first
// scan.
func New(dir string, exts []string, enqueue EnqueueFunc) *Monitor {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}

	return &Monitor{
		dir:      dir,
		exts:     set,
		enqueue:  enqueue,
		interval: DefaultInterval,
		seen:     make(map[string]bool),
	}
}

// Run watches until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Best effort; the rescan covers folders fsnotify cannot watch.
	_ = fsw.Add(m.dir)

	m.scan()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				m.offer(ev.Name)
			}
		case _, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
		case <-ticker.C:
			m.scan()
		}
	}
}

// scan walks the folder recursively and offers every matching file.
func (m *Monitor) scan() {
	_ = filepath.WalkDir(m.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() {
			m.offer(path)
		}
		return nil
	})
}

// offer enqueues a matching path it has not seen before.
func (m *Monitor) offer(path string) {
	if !m.exts[strings.ToLower(filepath.Ext(path))] {
		return
	}
	if m.seen[path] {
		return
	}
	m.seen[path] = true
	m.enqueue(path)
}
