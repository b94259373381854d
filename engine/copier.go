package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ProgressFunc receives the running byte count of the active copy.
type ProgressFunc func(copied, total int64)

// Copier performs buffered single-file copies onto the drive. Data
// lands in a ".part" temp file that is renamed into place only after a
// successful write and sync, so an interrupted copy never leaves a
// half-written file under the final name.
type Copier struct {
	pool *BufferPool
}

// NewCopier creates a Copier drawing buffers from pool.
func NewCopier(pool *BufferPool) *Copier {
	if pool == nil {
		pool = NewBufferPool(0)
	}
	return &Copier{pool: pool}
}

// Copy copies src to dest, creating parent directories as needed. The
// source's modification time is preserved on the destination. onProgress
// may be nil.
func (c *Copier) Copy(ctx context.Context, src, dest string, onProgress ProgressFunc) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmp := dest + ".part"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	pw := &progressWriter{
		w:     out,
		ctx:   ctx,
		total: srcInfo.Size(),
		fn:    onProgress,
	}

	buf := c.pool.Get()
	_, err = io.CopyBuffer(pw, in, *buf)
	c.pool.Put(buf)
	if err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("copy failed: %w", err)
	}

	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync destination: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close destination: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move temp file into place: %w", err)
	}

	// Writing updated the mtime; put the source's back. Not worth
	// failing the job over.
	_ = os.Chtimes(dest, time.Now(), srcInfo.ModTime())

	return nil
}

// progressWriter tracks bytes written and honors context cancellation
// between chunks.
type progressWriter struct {
	w      io.Writer
	ctx    context.Context
	total  int64
	copied int64
	fn     ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	if err := pw.ctx.Err(); err != nil {
		return 0, err
	}

	n, err := pw.w.Write(p)
	if n > 0 {
		pw.copied += int64(n)
		if pw.fn != nil {
			pw.fn(pw.copied, pw.total)
		}
	}
	return n, err
}
