package metrics

import "time"

// Report modes.
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// JobStarted marks a job of jobType as executing.
func JobStarted(jobType string) {
	JobsInFlight.WithLabelValues(jobType).Inc()
}

// JobCompleted records a successful attempt that took d.
func JobCompleted(jobType string, d time.Duration) {
	JobsInFlight.WithLabelValues(jobType).Dec()
	JobsTotal.WithLabelValues(jobType, "completed").Inc()
	JobDuration.WithLabelValues(jobType).Observe(d.Seconds())
}

// JobFailed records a failed attempt, retried or not.
func JobFailed(jobType string) {
	JobsInFlight.WithLabelValues(jobType).Dec()
	JobsTotal.WithLabelValues(jobType, "failed").Inc()
}

// JobRetried records that a failed attempt was rescheduled.
func JobRetried(jobType string) {
	JobRetriesTotal.WithLabelValues(jobType).Inc()
}

// ReportGenerated records a composed report of size bytes.
func ReportGenerated(format, mode string, d time.Duration, size int64) {
	ReportsGenerated.WithLabelValues(format, mode).Inc()
	ReportGenerationDuration.WithLabelValues(format).Observe(d.Seconds())
	ReportSizeBytes.Observe(float64(size))
}

// ReportFailed records a composition error. code is a domain error code.
func ReportFailed(mode, code string) {
	ReportFailures.WithLabelValues(mode, code).Inc()
}

// LoginAttempt records a login by outcome: success, unknown_user or
// bad_password.
func LoginAttempt(outcome string) {
	AuthAttempts.WithLabelValues(outcome).Inc()
}
