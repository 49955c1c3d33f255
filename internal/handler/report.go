package handler

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/DukeRupert/sdview/internal/auth"
	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/DukeRupert/sdview/internal/metrics"
	"github.com/DukeRupert/sdview/internal/report"
	"github.com/DukeRupert/sdview/internal/repository"
	"github.com/DukeRupert/sdview/internal/storage"
	"github.com/DukeRupert/sdview/internal/worker"
	"github.com/google/uuid"
)

// SnapshotLoader assembles report input for a site and day.
type SnapshotLoader interface {
	Load(ctx context.Context, siteID uuid.UUID, date time.Time) (*domain.ReportData, error)
}

// ReportStore is the subset of repository.Queries the report handler reads.
type ReportStore interface {
	worker.Enqueuer
	GetReportByID(ctx context.Context, id uuid.UUID) (repository.Report, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (repository.BackgroundJob, error)
}

// ReportHandler handles report export, background generation and download.
type ReportHandler struct {
	snapshots SnapshotLoader
	generator report.Generator
	reports   ReportStore
	storage   storage.Storage
	logger    *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	snapshots SnapshotLoader,
	generator report.Generator,
	reports ReportStore,
	store storage.Storage,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		snapshots: snapshots,
		generator: generator,
		reports:   reports,
		storage:   store,
		logger:    logger,
	}
}

// JobResponse describes a background job.
type JobResponse struct {
	JobID    uuid.UUID `json:"job_id"`
	Type     string    `json:"type"`
	Status   string    `json:"status"`
	Attempts int32     `json:"attempts"`
	Error    string    `json:"error,omitempty"`
}

type enqueueRequest struct {
	Date string `json:"date"`
}

// Export builds the workbook for a site and streams it as an attachment.
// GET /api/sites/{id}/report.xlsx?date=YYYY-MM-DD
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	const op = "ReportHandler.Export"

	siteID, err := parseID(r, op, "site")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	date, err := parseDate(op, r.URL.Query().Get("date"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data, err := h.snapshots.Load(r.Context(), siteID, date)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	size, err := h.generator.Generate(r.Context(), data, &buf)
	if err != nil {
		metrics.ReportFailed(metrics.ModeSync, domain.ErrorCode(err))
		if domain.ErrorCode(err) == domain.EINTERNAL {
			err = domain.Internal(err, op, "Failed to generate report")
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}
	format := h.generator.Format()
	metrics.ReportGenerated(format.String(), metrics.ModeSync, time.Since(start), size)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", storage.AttachmentDisposition(data.ReportFilename(format)))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write report", "site_id", siteID, "error", err)
	}
}

// Enqueue schedules background generation of a site's report.
// POST /api/sites/{id}/reports
func (h *ReportHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	const op = "ReportHandler.Enqueue"

	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	siteID, err := parseID(r, op, "site")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// The body is optional; an empty one means today.
	var req enqueueRequest
	if err := decodeJSON(w, r, op, &req); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	date, err := parseDate(op, req.Date)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	job, err := worker.EnqueueGenerateReport(r.Context(), h.reports, siteID, user.ID, date)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to schedule report"))
		return
	}

	h.logger.Info("report generation enqueued", "job_id", job.ID, "site_id", siteID, "user_id", user.ID)
	writeJSON(w, http.StatusAccepted, newJobResponse(job))
}

// JobStatus reports the state of a background job.
// GET /api/jobs/{id}
func (h *ReportHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	const op = "ReportHandler.JobStatus"

	id, err := parseID(r, op, "job")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	job, err := h.reports.GetJobByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ErrorResponse(w, r, h.logger, domain.NotFound(op, "job", id.String()))
			return
		}
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to load job"))
		return
	}

	writeJSON(w, http.StatusOK, newJobResponse(job))
}

// Download streams a stored report. Only the user who requested it or a
// manager may download it.
// GET /api/reports/{id}/download
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	const op = "ReportHandler.Download"

	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := parseID(r, op, "report")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	rec, err := h.reports.GetReportByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ErrorResponse(w, r, h.logger, domain.NotFound(op, "report", id.String()))
			return
		}
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to load report"))
		return
	}
	if rec.UserID != user.ID && !user.HasRole(domain.RoleManager) {
		// Reported as missing so IDs of other users stay hidden.
		ErrorResponse(w, r, h.logger, domain.NotFound(op, "report", id.String()))
		return
	}

	body, info, err := h.storage.Get(r.Context(), rec.StorageKey)
	if err != nil {
		if storage.IsNotFound(err) {
			ErrorResponse(w, r, h.logger, domain.Wrap(err, domain.ENOTFOUND, op, "Report file is no longer available"))
			return
		}
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to read report"))
		return
	}
	defer body.Close()

	format := domain.ReportFormat(rec.Format)
	filename := "SD-Report-" + rec.ReportDate.Format(time.DateOnly) + "." + format.FileExtension()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", storage.AttachmentDisposition(filename))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("failed to stream report", "report_id", id, "error", err)
	}
}

// RegisterRoutes registers the report routes. viewer gates reads; supervisor
// gates scheduling.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux, viewer, supervisor func(http.Handler) http.Handler) {
	mux.Handle("GET /api/sites/{id}/report.xlsx", viewer(http.HandlerFunc(h.Export)))
	mux.Handle("POST /api/sites/{id}/reports", supervisor(http.HandlerFunc(h.Enqueue)))
	mux.Handle("GET /api/jobs/{id}", viewer(http.HandlerFunc(h.JobStatus)))
	mux.Handle("GET /api/reports/{id}/download", viewer(http.HandlerFunc(h.Download)))
}

func newJobResponse(job repository.BackgroundJob) JobResponse {
	return JobResponse{
		JobID:    job.ID,
		Type:     job.JobType,
		Status:   job.Status,
		Attempts: job.Attempts,
		Error:    domain.NullStringValue(job.ErrorMessage),
	}
}

// parseID reads the {id} path value.
func parseID(r *http.Request, op, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domain.Wrap(err, domain.EINVALID, op, "Invalid "+resource+" ID")
	}
	return id, nil
}

// parseDate parses YYYY-MM-DD. An empty string yields the zero time, which
// the snapshot service resolves to today.
func parseDate(op, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, domain.Wrap(err, domain.EINVALID, op, "Date must be formatted as YYYY-MM-DD")
	}
	return d, nil
}
