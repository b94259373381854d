package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/usbutler/usbutler/store"
)

// ErrAlreadyQueued is returned when a source path is enqueued twice.
var ErrAlreadyQueued = errors.New("source already queued")

// Queue is the ordered list of transfer jobs. Insertion order is
// processing order, strictly FIFO. The single runner owns all job
// mutation; the display layer only reads snapshots.
type Queue struct {
	mu       sync.Mutex
	pending  []*TransferJob
	all      []*TransferJob
	bySource map[string]*TransferJob
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		bySource: make(map[string]*TransferJob),
	}
}

// Enqueue appends job to the tail. A source path that is already
// tracked this session is rejected with ErrAlreadyQueued.
func (q *Queue) Enqueue(job *TransferJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, dup := q.bySource[job.SourcePath]; dup {
		return ErrAlreadyQueued
	}
	q.bySource[job.SourcePath] = job
	q.pending = append(q.pending, job)
	q.all = append(q.all, job)
	return nil
}

// dequeue pops the head of the pending list, or nil when empty.
func (q *Queue) dequeue() *TransferJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	job := q.pending[0]
	q.pending = q.pending[1:]
	return job
}

// IsEmpty reports whether any jobs remain pending.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) == 0
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Jobs returns value snapshots of every job tracked this session, in
// insertion order. Safe to call from the display layer while the
// runner is copying.
func (q *Queue) Jobs() []TransferJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]TransferJob, len(q.all))
	for i, job := range q.all {
		out[i] = *job
	}
	return out
}

// Remove drops a pending job by ID. Jobs that already started cannot
// be removed.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, job := range q.pending {
		if job.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			q.removeTrackedLocked(job)
			return true
		}
	}
	return false
}

// Clear drops every pending job. Jobs already processed keep their
// terminal status.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.pending {
		q.removeTrackedLocked(job)
	}
	q.pending = nil
}

func (q *Queue) removeTrackedLocked(job *TransferJob) {
	delete(q.bySource, job.SourcePath)
	for i, j := range q.all {
		if j == job {
			q.all = append(q.all[:i], q.all[i+1:]...)
			return
		}
	}
}

// setDest records the resolved destination path for job.
func (q *Queue) setDest(job *TransferJob, dest string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.DestPath = dest
}

// start marks job InProgress. The runner calls it for exactly one job
// at a time, which keeps the single-active-copy invariant.
func (q *Queue) start(job *TransferJob) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job.Status = store.StatusInProgress
	job.StartedAt = time.Now()
}

// finish records a terminal status for job.
func (q *Queue) finish(job *TransferJob, status store.Status, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job.Status = status
	job.Err = err
	job.FinishedAt = time.Now()
	if status == store.StatusDone {
		job.BytesCopied = job.Size
	}
}

// progress records bytes copied so far for the active job.
func (q *Queue) progress(job *TransferJob, copied int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.BytesCopied = copied
}
