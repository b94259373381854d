package engine

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/usbutler/usbutler/media"
	"github.com/usbutler/usbutler/store"
)

// TransferJob is one file's pending or completed copy to the drive.
// It is created at enqueue time and mutated only through the Queue,
// which keeps snapshots safe for the display layer.
type TransferJob struct {
	ID          string
	SourcePath  string
	DestPath    string // filled in when the job is processed
	DisplayName string
	Info        media.Info
	Size        int64
	BytesCopied int64
	Status      store.Status
	Err         error
	EnqueuedAt  time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
}

// NewJob builds a Pending job for src, deriving its display label from
// the filename. Label derivation never fails; unparseable names keep
// the raw filename.
func NewJob(src string, size int64) *TransferJob {
	info := media.Extract(filepath.Base(src))
	return &TransferJob{
		ID:          uuid.NewString(),
		SourcePath:  src,
		DisplayName: info.Label(),
		Info:        info,
		Size:        size,
		Status:      store.StatusPending,
		EnqueuedAt:  time.Now(),
	}
}

// Record converts the job to its persisted form.
func (j *TransferJob) Record() *store.JobRecord {
	rec := &store.JobRecord{
		ID:          j.ID,
		SourcePath:  j.SourcePath,
		DestPath:    j.DestPath,
		DisplayName: j.DisplayName,
		Status:      j.Status,
		BytesCopied: j.BytesCopied,
		TotalBytes:  j.Size,
		EnqueuedAt:  j.EnqueuedAt,
		FinishedAt:  j.FinishedAt,
	}
	if j.Err != nil {
		rec.Error = j.Err.Error()
	}
	return rec
}
