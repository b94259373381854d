package engine

import (
	"errors"
	"testing"

	"github.com/usbutler/usbutler/store"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()

	paths := []string{"/downloads/a.mkv", "/downloads/b.mkv", "/downloads/c.mkv"}
	for _, p := range paths {
		if err := q.Enqueue(NewJob(p, 10)); err != nil {
			t.Fatalf("Enqueue(%s) failed: %v", p, err)
		}
	}

	if q.Len() != 3 {
		t.Fatalf("Expected 3 pending jobs, got %d", q.Len())
	}

	for i, want := range paths {
		job := q.dequeue()
		if job == nil {
			t.Fatalf("Expected job %d, got nil", i)
		}
		if job.SourcePath != want {
			t.Errorf("Job %d: expected %s, got %s", i, want, job.SourcePath)
		}
	}

	if !q.IsEmpty() {
		t.Error("Expected empty queue after dequeuing everything")
	}
	if q.dequeue() != nil {
		t.Error("Expected nil from empty queue")
	}
}

func TestQueue_RejectsDuplicate(t *testing.T) {
	q := NewQueue()

	if err := q.Enqueue(NewJob("/downloads/a.mkv", 10)); err != nil {
		t.Fatalf("First enqueue failed: %v", err)
	}

	err := q.Enqueue(NewJob("/downloads/a.mkv", 10))
	if !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("Expected ErrAlreadyQueued, got %v", err)
	}
}

func TestQueue_JobsSnapshot(t *testing.T) {
	q := NewQueue()

	_ = q.Enqueue(NewJob("/downloads/a.mkv", 10))
	_ = q.Enqueue(NewJob("/downloads/b.mkv", 10))

	job := q.dequeue()
	q.start(job)
	q.finish(job, store.StatusDone, nil)

	jobs := q.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected snapshot of 2 jobs, got %d", len(jobs))
	}
	if jobs[0].SourcePath != "/downloads/a.mkv" || jobs[1].SourcePath != "/downloads/b.mkv" {
		t.Error("Expected snapshot in insertion order")
	}
	if jobs[0].Status != store.StatusDone {
		t.Errorf("Expected first job Done, got %s", jobs[0].Status)
	}
	if jobs[1].Status != store.StatusPending {
		t.Errorf("Expected second job Pending, got %s", jobs[1].Status)
	}

	// Snapshots are copies; mutating one must not touch the queue.
	jobs[1].Status = store.StatusFailed
	if q.Jobs()[1].Status != store.StatusPending {
		t.Error("Snapshot mutation leaked into the queue")
	}
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue()

	jobA := NewJob("/downloads/a.mkv", 10)
	jobB := NewJob("/downloads/b.mkv", 10)
	_ = q.Enqueue(jobA)
	_ = q.Enqueue(jobB)

	if !q.Remove(jobA.ID) {
		t.Fatal("Expected Remove to succeed for pending job")
	}
	if q.Len() != 1 {
		t.Errorf("Expected 1 pending job, got %d", q.Len())
	}
	if q.Remove(jobA.ID) {
		t.Error("Expected Remove to fail for unknown ID")
	}

	// Removed source can be enqueued again.
	if err := q.Enqueue(NewJob("/downloads/a.mkv", 10)); err != nil {
		t.Errorf("Expected re-enqueue after Remove, got %v", err)
	}
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()

	_ = q.Enqueue(NewJob("/downloads/a.mkv", 10))
	done := q.dequeue()
	q.finish(done, store.StatusDone, nil)
	_ = q.Enqueue(NewJob("/downloads/b.mkv", 10))
	_ = q.Enqueue(NewJob("/downloads/c.mkv", 10))

	q.Clear()

	if !q.IsEmpty() {
		t.Error("Expected empty queue after Clear")
	}
	jobs := q.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("Expected processed job to survive Clear, got %d jobs", len(jobs))
	}
	if jobs[0].Status != store.StatusDone {
		t.Errorf("Expected surviving job Done, got %s", jobs[0].Status)
	}
}

func TestNewJob_DerivesDisplayName(t *testing.T) {
	job := NewJob("/downloads/The.Matrix.1999.1080p.mkv", 42)

	if job.DisplayName != "The Matrix (1999)" {
		t.Errorf("Expected display name 'The Matrix (1999)', got %q", job.DisplayName)
	}
	if job.Status != store.StatusPending {
		t.Errorf("Expected Pending, got %s", job.Status)
	}
	if job.ID == "" {
		t.Error("Expected non-empty job ID")
	}
	if job.Size != 42 {
		t.Errorf("Expected size 42, got %d", job.Size)
	}
}

func TestTransferJob_Record(t *testing.T) {
	job := NewJob("/downloads/a.mkv", 10)
	job.DestPath = "/media/usb0/Movies/a.mkv"
	job.Status = store.StatusFailed
	job.Err = errors.New("disk full")

	rec := job.Record()
	if rec.ID != job.ID {
		t.Errorf("Expected ID %s, got %s", job.ID, rec.ID)
	}
	if rec.Status != store.StatusFailed {
		t.Errorf("Expected Failed, got %s", rec.Status)
	}
	if rec.Error != "disk full" {
		t.Errorf("Expected error string 'disk full', got %q", rec.Error)
	}
	if rec.TotalBytes != 10 {
		t.Errorf("Expected total bytes 10, got %d", rec.TotalBytes)
	}
}
