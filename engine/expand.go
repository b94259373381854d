package engine

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Expander turns user selections (single files, folders, zip archives)
// into individual transfer jobs on the queue. Folders are walked
// iteratively rather than recursively so a deep tree cannot blow the
// stack.
type Expander struct {
	queue       *Queue
	videoExts   map[string]bool
	archiveExts map[string]bool

	mu       sync.Mutex
	tempDirs []string
}

// NewExpander creates an Expander feeding q. Extension sets are
// matched case-insensitively and may be given with or without the
// leading dot.
func NewExpander(q *Queue, videoExts, archiveExts []string) *Expander {
	return &Expander{
		queue:       q,
		videoExts:   extSet(videoExts),
		archiveExts: extSet(archiveExts),
	}
}

func extSet(exts []string) map[string]bool {
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
	return set
}

func pathExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Add expands path into transfer jobs and returns how many were
// enqueued. A folder is walked recursively and filtered by the video
// and archive extension sets; a zip archive is extracted and its
// contained videos enqueued; a single file is enqueued as-is, since an
// explicitly chosen file needs no filtering. Paths already queued this
// session are silently skipped during expansion.
func (e *Expander) Add(ctx context.Context, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.IsDir() {
		return e.addDir(ctx, path, true)
	}
	if e.archiveExts[pathExt(path)] {
		return e.addArchive(ctx, path)
	}
	return e.addFile(path, info.Size())
}

// Cleanup removes the temp directories holding extracted archives.
// Call it once the queue has drained.
func (e *Expander) Cleanup() {
	e.mu.Lock()
	dirs := e.tempDirs
	e.tempDirs = nil
	e.mu.Unlock()

	for _, d := range dirs {
		os.RemoveAll(d)
	}
}

func (e *Expander) addFile(path string, size int64) (int, error) {
	if err := e.queue.Enqueue(NewJob(path, size)); err != nil {
		return 0, err
	}
	return 1, nil
}

// addDir walks root breadth-first in directory order, enqueuing every
// file whose extension matches. ReadDir returns entries sorted by
// name, which keeps expansion order deterministic.
func (e *Expander) addDir(ctx context.Context, root string, includeArchives bool) (int, error) {
	count := 0
	dirs := []string{root}

	for len(dirs) > 0 {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		dir := dirs[0]
		dirs = dirs[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return count, fmt.Errorf("failed to list directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				dirs = append(dirs, full)
				continue
			}

			ext := pathExt(entry.Name())
			switch {
			case e.videoExts[ext]:
				info, err := entry.Info()
				if err != nil {
					continue // disappeared between ReadDir and Info
				}
				n, err := e.addFile(full, info.Size())
				if err != nil && !errors.Is(err, ErrAlreadyQueued) {
					return count, err
				}
				count += n
			case includeArchives && e.archiveExts[ext]:
				n, err := e.addArchive(ctx, full)
				if err != nil {
					return count, err
				}
				count += n
			}
		}
	}
	return count, nil
}

// addArchive extracts a zip into a temp directory and enqueues the
// videos it contains. The temp directory lives until Cleanup so the
// extracted sources exist when the queue reaches them.
func (e *Expander) addArchive(ctx context.Context, path string) (int, error) {
	td, err := os.MkdirTemp("", "usbutler_zip_")
	if err != nil {
		return 0, fmt.Errorf("failed to create extraction dir: %w", err)
	}

	if err := extractZip(ctx, path, td); err != nil {
		os.RemoveAll(td)
		return 0, fmt.Errorf("failed to extract %s: %w", filepath.Base(path), err)
	}

	e.mu.Lock()
	e.tempDirs = append(e.tempDirs, td)
	e.mu.Unlock()

	// Nested archives inside an archive are not expanded.
	return e.addDir(ctx, td, false)
}

func extractZip(ctx context.Context, src, dest string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer zr.Close()

	destRoot := filepath.Clean(dest) + string(os.PathSeparator)

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := filepath.Join(dest, filepath.Clean(f.Name))
		if !strings.HasPrefix(target, destRoot) {
			// Entry escapes the extraction dir.
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := extractZipFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
