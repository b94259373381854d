package engine

import (
	"sync"
)

// DefaultBufferSize is the chunk size used for copies. USB mass
// storage throughput flattens out around 1MB chunks.
const DefaultBufferSize = 1 * 1024 * 1024

// BufferPool reuses copy buffers across jobs so a long queue does not
// churn the garbage collector.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a pool handing out buffers of the given size.
// Sizes <= 0 fall back to DefaultBufferSize.
func NewBufferPool(size int) *BufferPool {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, size)
				return &b
			},
		},
	}
}

// Get retrieves a buffer from the pool. Callers should Put it back
// when the copy finishes.
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool. The caller must not touch the
// buffer afterwards.
func (bp *BufferPool) Put(b *[]byte) {
	if b != nil {
		bp.pool.Put(b)
	}
}
