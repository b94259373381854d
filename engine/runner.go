package engine

import (
	"context"
	"errors"

	"github.com/usbutler/usbutler/drive"
	"github.com/usbutler/usbutler/resolve"
	"github.com/usbutler/usbutler/store"
)

// Runner drains the queue on a single worker. Copies are strictly
// sequential: the USB controller never services competing writes, and
// every failure stays attributable to exactly one job.
type Runner struct {
	queue    *Queue
	resolver *resolve.Resolver
	copier   *Copier
	tracker  *Tracker
	root     string

	// Logf receives per-job progress messages. Optional.
	Logf func(format string, args ...any)
}

// NewRunner creates a Runner copying onto the drive rooted at root.
// tracker may be nil to run without a persistent ledger.
func NewRunner(q *Queue, r *resolve.Resolver, c *Copier, t *Tracker, root string) *Runner {
	return &Runner{
		queue:    q,
		resolver: r,
		copier:   c,
		tracker:  t,
		root:     root,
	}
}

// Run processes jobs in insertion order until the queue is empty. It
// returns early when the context is cancelled or the drive
// disconnects; in both cases the unprocessed jobs stay Pending.
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if r.queue.IsEmpty() {
			return nil
		}
		if err := r.ProcessNext(ctx); err != nil {
			return err
		}
	}
}

// ProcessNext pops the head job, performs the copy, and records the
// resulting status. Per-job failures (conflict, I/O error) are
// terminal for that job only and return nil so the queue continues.
// Only drive disconnection and context cancellation are returned as
// errors, halting the queue.
func (r *Runner) ProcessNext(ctx context.Context) error {
	// Checked before dequeuing so a halt leaves the head Pending.
	if err := drive.Check(r.root); err != nil {
		r.logf("halting queue: %v", err)
		return err
	}

	job := r.queue.dequeue()
	if job == nil {
		return nil
	}

	dest, err := r.resolver.Resolve(r.root, job.SourcePath, job.Info)
	r.queue.setDest(job, dest)
	if err != nil {
		if errors.Is(err, resolve.ErrDestinationConflict) {
			r.queue.finish(job, store.StatusSkipped, err)
			r.record(job)
			r.logf("skipped %s: already on drive", job.DisplayName)
			return nil
		}
		r.queue.finish(job, store.StatusFailed, err)
		r.record(job)
		r.logf("failed %s: %v", job.DisplayName, err)
		return nil
	}

	r.queue.start(job)
	r.record(job)
	r.logf("copying %s -> %s", job.DisplayName, dest)

	if err := r.copier.Copy(ctx, job.SourcePath, dest, r.progressFunc(job)); err != nil {
		r.queue.finish(job, store.StatusFailed, err)
		r.record(job)
		r.logf("failed %s: %v", job.DisplayName, err)

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		// An I/O failure with the root gone means the drive was
		// unplugged mid-copy; stop instead of failing the whole queue
		// job by job.
		if cerr := drive.Check(r.root); cerr != nil {
			r.logf("halting queue: %v", cerr)
			return cerr
		}
		return nil
	}

	r.queue.finish(job, store.StatusDone, nil)
	r.record(job)
	r.logf("done %s", job.DisplayName)
	return nil
}

func (r *Runner) progressFunc(job *TransferJob) ProgressFunc {
	if r.tracker == nil {
		return func(copied, total int64) {
			r.queue.progress(job, copied)
		}
	}
	return r.tracker.ProgressFunc(r.queue, job)
}

func (r *Runner) record(job *TransferJob) {
	if r.tracker == nil {
		return
	}
	if err := r.tracker.Record(job); err != nil {
		r.logf("ledger write failed for %s: %v", job.ID, err)
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}
