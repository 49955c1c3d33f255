// Package worker runs background jobs stored in Postgres.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/sdview/internal/metrics"
	"github.com/DukeRupert/sdview/internal/repository"
)

// Worker manages background job processing with concurrent workers.
type Worker struct {
	queue    Queue
	handlers map[string]JobHandler
	config   Config
	logger   *slog.Logger

	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a new Worker with the given configuration.
// The worker must be started with Start() and stopped with Stop().
func New(queue Queue, config Config, logger *slog.Logger) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Worker{
		queue:    queue,
		handlers: make(map[string]JobHandler),
		config:   config,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Register adds a job handler to the worker. Call this before Start().
func (w *Worker) Register(handler JobHandler) {
	jobType := handler.Type()
	if _, exists := w.handlers[jobType]; exists {
		w.logger.Warn("overwriting existing handler", "job_type", jobType)
	}
	w.handlers[jobType] = handler
	w.logger.Debug("registered job handler", "job_type", jobType)
}

// Start recovers stale jobs, then launches the polling goroutines.
func (w *Worker) Start(ctx context.Context) {
	if n, err := w.queue.RecoverStale(ctx, w.config.StaleJobThreshold); err != nil {
		w.logger.Error("failed to recover stale jobs", "error", err)
	} else if n > 0 {
		w.logger.Warn("recovered stale jobs", "count", n, "threshold", w.config.StaleJobThreshold)
	}

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, i+1)
	}

	w.logger.Info("worker started", "concurrency", w.config.Concurrency)
}

// Stop signals all workers to stop and waits up to ShutdownTimeout for
// running jobs to finish.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker")
	w.stopOnce.Do(func() { close(w.stopCh) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("worker stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		w.logger.Warn("worker shutdown timeout exceeded, some jobs may still be running")
	}
}

func (w *Worker) runWorker(ctx context.Context, workerID int) {
	defer w.wg.Done()

	logger := w.logger.With("worker_id", workerID)
	logger.Debug("poller started")

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			logger.Debug("poller stopping")
			return
		case <-ctx.Done():
			logger.Debug("poller context done")
			return
		case <-ticker.C:
			// Drain ready jobs before waiting for the next tick.
			for {
				err := w.processNextJob(ctx, logger)
				if errors.Is(err, ErrNoJob) {
					break
				}
				if err != nil {
					logger.Error("failed to process job", "error", err)
					break
				}
				select {
				case <-w.stopCh:
					return
				default:
				}
			}
		}
	}
}

// processNextJob dequeues and executes a single job. Returns ErrNoJob when
// the queue is empty. A failing job is recorded and is not an error of
// processNextJob.
func (w *Worker) processNextJob(ctx context.Context, logger *slog.Logger) error {
	job, err := w.queue.Dequeue(ctx)
	if err != nil {
		return err
	}

	logger = logger.With("job_id", job.ID, "job_type", job.JobType, "attempt", job.Attempts)
	logger.Info("processing job")

	metrics.JobStarted(job.JobType)
	start := time.Now()

	if err := w.executeJob(ctx, job); err != nil {
		w.markJobFailed(ctx, job, err, logger)
		return nil
	}

	metrics.JobCompleted(job.JobType, time.Since(start))
	logger.Info("job completed", "duration", time.Since(start))

	if err := w.queue.Complete(ctx, job.ID); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}

// executeJob runs the handler for job with the configured timeout.
func (w *Worker) executeJob(ctx context.Context, job repository.BackgroundJob) error {
	handler, ok := w.handlers[job.JobType]
	if !ok {
		return NewPermanentError(fmt.Errorf("no handler registered for job type: %s", job.JobType))
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	return handler.Handle(jobCtx, job.Payload)
}

// markJobFailed records a failed attempt. Permanent errors and exhausted
// attempts end the job; anything else is rescheduled with backoff.
func (w *Worker) markJobFailed(ctx context.Context, job repository.BackgroundJob, jobErr error, logger *slog.Logger) {
	metrics.JobFailed(job.JobType)

	permanent := IsPermanent(jobErr)
	status, err := w.queue.Fail(ctx, job.ID, jobErr.Error(), permanent)
	if err != nil {
		logger.Error("failed to mark job as failed", "error", err, "job_error", jobErr)
		return
	}

	if status == StatusPending {
		metrics.JobRetried(job.JobType)
		logger.Warn("job failed, will retry", "error", jobErr)
		return
	}
	logger.Error("job failed", "error", jobErr, "permanent", permanent)
}
