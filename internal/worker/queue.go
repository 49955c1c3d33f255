package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DukeRupert/sdview/internal/repository"
	"github.com/google/uuid"
)

// ErrNoJob is returned by Queue.Dequeue when nothing is ready to run.
var ErrNoJob = errors.New("no job available")

// Job statuses returned by Queue.Fail.
const (
	StatusPending = "pending"
	StatusFailed  = "failed"
)

// Queue is the job store the worker polls.
type Queue interface {
	// Dequeue claims the next ready job and marks it running. The returned
	// job's Attempts already includes this attempt.
	Dequeue(ctx context.Context) (repository.BackgroundJob, error)
	Complete(ctx context.Context, id uuid.UUID) error
	// Fail records the error and returns the job's new status:
	// StatusPending when it will be retried, StatusFailed otherwise.
	Fail(ctx context.Context, id uuid.UUID, message string, permanent bool) (string, error)
	RecoverStale(ctx context.Context, threshold time.Duration) (int64, error)
}

// DBQueue is the Postgres-backed Queue. Dequeue locks with
// FOR UPDATE SKIP LOCKED so concurrent workers never claim the same job.
type DBQueue struct {
	db      *sql.DB
	queries *repository.Queries
}

// NewDBQueue creates a DBQueue.
func NewDBQueue(db *sql.DB, queries *repository.Queries) *DBQueue {
	return &DBQueue{db: db, queries: queries}
}

func (q *DBQueue) Dequeue(ctx context.Context) (repository.BackgroundJob, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return repository.BackgroundJob{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := q.queries.WithTx(tx)

	job, err := qtx.DequeueJob(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.BackgroundJob{}, ErrNoJob
		}
		return repository.BackgroundJob{}, fmt.Errorf("dequeue job: %w", err)
	}

	if err := qtx.UpdateJobStarted(ctx, job.ID); err != nil {
		return repository.BackgroundJob{}, fmt.Errorf("mark job started: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return repository.BackgroundJob{}, fmt.Errorf("commit dequeue: %w", err)
	}

	job.Attempts++
	job.Status = "running"
	return job, nil
}

func (q *DBQueue) Complete(ctx context.Context, id uuid.UUID) error {
	if err := q.queries.UpdateJobCompleted(ctx, id); err != nil {
		return fmt.Errorf("update job completed: %w", err)
	}
	return nil
}

func (q *DBQueue) Fail(ctx context.Context, id uuid.UUID, message string, permanent bool) (string, error) {
	status, err := q.queries.UpdateJobFailed(ctx, repository.UpdateJobFailedParams{
		ID:           id,
		ErrorMessage: sql.NullString{String: message, Valid: true},
		Permanent:    permanent,
	})
	if err != nil {
		return "", fmt.Errorf("update job failed: %w", err)
	}
	return status, nil
}

func (q *DBQueue) RecoverStale(ctx context.Context, threshold time.Duration) (int64, error) {
	n, err := q.queries.RecoverStaleJobs(ctx, threshold.Seconds())
	if err != nil {
		return 0, fmt.Errorf("recover stale jobs: %w", err)
	}
	return n, nil
}
