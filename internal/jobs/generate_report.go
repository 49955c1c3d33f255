// Package jobs contains the background job handlers run by the worker.
package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/DukeRupert/sdview/internal/metrics"
	"github.com/DukeRupert/sdview/internal/report"
	"github.com/DukeRupert/sdview/internal/repository"
	"github.com/DukeRupert/sdview/internal/storage"
	"github.com/DukeRupert/sdview/internal/worker"
	"github.com/google/uuid"
)

// MaxReportSize caps stored reports; a larger workbook indicates a bug.
const MaxReportSize = 20 << 20

// SnapshotLoader assembles report inputs for a site and day.
type SnapshotLoader interface {
	Load(ctx context.Context, siteID uuid.UUID, date time.Time) (*domain.ReportData, error)
}

// ReportRecorder persists a stored report.
type ReportRecorder interface {
	CreateReport(ctx context.Context, arg repository.CreateReportParams) (repository.Report, error)
}

// GenerateReportHandler processes generate_report jobs: it composes the
// site's xlsx report, uploads it and records it.
type GenerateReportHandler struct {
	snapshots SnapshotLoader
	generator report.Generator
	storage   storage.Storage
	reports   ReportRecorder
	logger    *slog.Logger
}

// NewGenerateReportHandler creates a new handler for report generation jobs.
func NewGenerateReportHandler(
	snapshots SnapshotLoader,
	generator report.Generator,
	store storage.Storage,
	reports ReportRecorder,
	logger *slog.Logger,
) *GenerateReportHandler {
	return &GenerateReportHandler{
		snapshots: snapshots,
		generator: generator,
		storage:   store,
		reports:   reports,
		logger:    logger,
	}
}

// Type returns the job type identifier.
func (h *GenerateReportHandler) Type() string {
	return worker.JobTypeGenerateReport
}

// Handle executes the report generation job.
func (h *GenerateReportHandler) Handle(ctx context.Context, payload []byte) error {
	// 1. Unmarshal and validate the payload
	var p worker.GenerateReportPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.Permanentf("invalid payload: %w", err)
	}
	if p.SiteID == uuid.Nil || p.UserID == uuid.Nil {
		return worker.Permanentf("invalid payload: site_id and user_id are required")
	}

	var date time.Time
	if p.Date != "" {
		d, err := time.Parse(time.DateOnly, p.Date)
		if err != nil {
			return worker.Permanentf("invalid date %q: %w", p.Date, err)
		}
		date = d
	}

	logger := h.logger.With("site_id", p.SiteID, "user_id", p.UserID)
	logger.Info("generating report", "date", p.Date)

	// 2. Load the snapshot
	data, err := h.snapshots.Load(ctx, p.SiteID, date)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return worker.Permanentf("site not found: %s", p.SiteID)
		}
		return fmt.Errorf("load snapshot: %w", err)
	}

	// 3. Generate the workbook into memory
	format := h.generator.Format()
	start := time.Now()

	var buf bytes.Buffer
	size, err := h.generator.Generate(ctx, data, &buf)
	if err != nil {
		metrics.ReportFailed(metrics.ModeAsync, domain.ErrorCode(err))
		if domain.ErrorCode(err) == domain.EINVALID {
			return worker.Permanentf("generate %s: %w", format, err)
		}
		return fmt.Errorf("generate %s: %w", format, err)
	}
	metrics.ReportGenerated(format.String(), metrics.ModeAsync, time.Since(start), size)

	// 4. Upload to storage
	key := storage.ReportKey(p.SiteID, format.FileExtension())
	err = h.storage.Put(ctx, key, &buf, storage.PutOptions{
		ContentType:        format.ContentType(),
		ContentDisposition: storage.AttachmentDisposition(data.ReportFilename(format)),
		MaxSize:            MaxReportSize,
	})
	if err != nil {
		if storage.IsTooLarge(err) {
			return worker.Permanentf("upload report: %w", err)
		}
		return fmt.Errorf("upload report to storage: %w", err)
	}

	// 5. Record the report
	rec, err := h.reports.CreateReport(ctx, repository.CreateReportParams{
		SiteID:     p.SiteID,
		UserID:     p.UserID,
		StorageKey: key,
		Format:     format.String(),
		ReportDate: data.ReportDate,
		SizeBytes:  size,
	})
	if err != nil {
		// The object is unreachable without its record.
		if delErr := h.storage.Delete(ctx, key); delErr != nil {
			logger.Warn("failed to delete orphaned report", "storage_key", key, "error", delErr)
		}
		return fmt.Errorf("create report record: %w", err)
	}

	logger.Info("report generation completed",
		"report_id", rec.ID,
		"storage_key", key,
		"size_bytes", size,
		"duration", time.Since(start),
	)
	return nil
}
