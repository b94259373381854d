// Package store persists the transfer ledger: one record per queued
// file, updated on every status transition, so a later session can see
// what was already copied to the drive.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// ErrJobNotFound is returned when a job is not present in the ledger.
var ErrJobNotFound = errors.New("job not found")

var jobsBucket = []byte("jobs")

// Status is the lifecycle state of a transfer job.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
	StatusFailed     Status = "Failed"
	StatusSkipped    Status = "Skipped"
)

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusSkipped
}

// JobRecord is the persisted form of one transfer job.
type JobRecord struct {
	ID          string    `json:"id"`
	SourcePath  string    `json:"source_path"`
	DestPath    string    `json:"dest_path,omitempty"`
	DisplayName string    `json:"display_name"`
	Status      Status    `json:"status"`
	BytesCopied int64     `json:"bytes_copied"`
	TotalBytes  int64     `json:"total_bytes"`
	Error       string    `json:"error,omitempty"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Store is the interface for the transfer ledger.
type Store interface {
	SaveJob(job *JobRecord) error
	GetJob(id string) (*JobRecord, error)
	ListJobs() ([]*JobRecord, error)
	Close() error
}

// BoltStore is a Store implementation backed by bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) a ledger at the given path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(jobsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create jobs bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SaveJob writes a job record, replacing any previous version.
func (s *BoltStore) SaveJob(job *JobRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(jobsBucket)

		data, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}

		if err := b.Put([]byte(job.ID), data); err != nil {
			return fmt.Errorf("failed to put job: %w", err)
		}
		return nil
	})
}

// GetJob retrieves a job record by ID.
func (s *BoltStore) GetJob(id string) (*JobRecord, error) {
	var job JobRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(jobsBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrJobNotFound
		}

		if err := json.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("failed to unmarshal job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns every record in the ledger.
func (s *BoltStore) ListJobs() ([]*JobRecord, error) {
	var jobs []*JobRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(jobsBucket)
		return b.ForEach(func(_, data []byte) error {
			var job JobRecord
			if err := json.Unmarshal(data, &job); err != nil {
				return fmt.Errorf("failed to unmarshal job: %w", err)
			}
			jobs = append(jobs, &job)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
