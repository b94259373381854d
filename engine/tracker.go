package engine

import (
	"time"

	"github.com/usbutler/usbutler/store"
)

// CheckpointConfig bounds how often in-flight copy progress is written
// to the ledger.
type CheckpointConfig struct {
	// BytesInterval triggers a checkpoint after this many new bytes.
	BytesInterval int64
	// TimeInterval triggers a checkpoint after this much time.
	TimeInterval time.Duration
}

// DefaultCheckpointConfig provides reasonable defaults.
var DefaultCheckpointConfig = CheckpointConfig{
	BytesInterval: 10 * 1024 * 1024,
	TimeInterval:  5 * time.Second,
}

// Tracker mirrors job status transitions into the persistent ledger.
type Tracker struct {
	store  store.Store
	config CheckpointConfig
}

// NewTracker creates a Tracker writing to s.
func NewTracker(s store.Store, config CheckpointConfig) *Tracker {
	return &Tracker{
		store:  s,
		config: config,
	}
}

// Record persists the job's current state, replacing any previous
// record.
func (t *Tracker) Record(job *TransferJob) error {
	return t.store.SaveJob(job.Record())
}

// Checkpoint persists the byte count of an in-flight copy.
func (t *Tracker) Checkpoint(jobID string, copied int64) error {
	rec, err := t.store.GetJob(jobID)
	if err != nil {
		return err
	}
	rec.BytesCopied = copied
	return t.store.SaveJob(rec)
}

// ProgressFunc returns a ProgressFunc that reports into the queue and
// checkpoints the ledger at the configured intervals. It is only ever
// called from the single copy worker.
func (t *Tracker) ProgressFunc(q *Queue, job *TransferJob) ProgressFunc {
	lastBytes := int64(0)
	lastTime := time.Now()

	return func(copied, total int64) {
		q.progress(job, copied)

		if copied-lastBytes < t.config.BytesInterval && time.Since(lastTime) < t.config.TimeInterval {
			return
		}
		// A missed checkpoint is not worth failing the copy over.
		_ = t.Checkpoint(job.ID, copied)
		lastBytes = copied
		lastTime = time.Now()
	}
}
