package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DukeRupert/sdview/internal/repository"
	"github.com/google/uuid"
)

// Job type constants - these must match the JobHandler.Type() values
const (
	JobTypeGenerateReport = "generate_report"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// DefaultMaxAttempts is used unless WithMaxAttempts overrides it.
const DefaultMaxAttempts = 3

// GenerateReportPayload is the payload for report generation jobs.
type GenerateReportPayload struct {
	SiteID uuid.UUID `json:"site_id"`
	UserID uuid.UUID `json:"user_id"`
	// Date is the report day as YYYY-MM-DD; empty means the day the job runs.
	Date string `json:"date,omitempty"`
}

// Enqueuer is the subset of repository.Queries needed to enqueue jobs.
type Enqueuer interface {
	EnqueueJob(ctx context.Context, arg repository.EnqueueJobParams) (repository.BackgroundJob, error)
}

// EnqueueOption is a functional option for customizing job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// EnqueueJob marshals payload and inserts a pending job.
func EnqueueJob(
	ctx context.Context,
	q Enqueuer,
	jobType string,
	payload any,
	opts ...EnqueueOption,
) (repository.BackgroundJob, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.BackgroundJob{}, fmt.Errorf("marshal payload: %w", err)
	}

	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: DefaultMaxAttempts,
		ScheduledAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&params)
	}

	job, err := q.EnqueueJob(ctx, params)
	if err != nil {
		return repository.BackgroundJob{}, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// EnqueueGenerateReport enqueues an xlsx export of siteID for date.
// A zero date leaves the day to be resolved when the job runs.
func EnqueueGenerateReport(
	ctx context.Context,
	q Enqueuer,
	siteID uuid.UUID,
	userID uuid.UUID,
	date time.Time,
	opts ...EnqueueOption,
) (repository.BackgroundJob, error) {
	payload := GenerateReportPayload{
		SiteID: siteID,
		UserID: userID,
	}
	if !date.IsZero() {
		payload.Date = date.Format(time.DateOnly)
	}
	return EnqueueJob(ctx, q, JobTypeGenerateReport, payload, opts...)
}
