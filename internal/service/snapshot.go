package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/DukeRupert/sdview/internal/repository"
	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// SnapshotStore is the subset of repository.Queries used to assemble report
// inputs.
type SnapshotStore interface {
	GetSiteByID(ctx context.Context, id uuid.UUID) (repository.Site, error)
	ListDevicesBySite(ctx context.Context, siteID uuid.UUID) ([]repository.Device, error)
	ListDeviceJobsBySite(ctx context.Context, siteID uuid.UUID) ([]repository.DeviceJob, error)
	ListResourcesBySiteAndDate(ctx context.Context, arg repository.ListResourcesBySiteAndDateParams) ([]repository.Resource, error)
	GetDailySafety(ctx context.Context, arg repository.GetDailySafetyParams) (repository.DailySafety, error)
}

// SnapshotConfig controls how report dates and headers are resolved.
type SnapshotConfig struct {
	// Location is the time zone that defines "today". Defaults to UTC.
	Location *time.Location
	// HeaderImageURL is placed in every report's header region when set.
	HeaderImageURL string
}

// SnapshotService assembles the read-only inputs of one site's report for one
// day.
type SnapshotService struct {
	store  SnapshotStore
	cfg    SnapshotConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewSnapshotService creates a SnapshotService.
func NewSnapshotService(store SnapshotStore, cfg SnapshotConfig, logger *slog.Logger) *SnapshotService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SnapshotService{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Today returns the current calendar day in the configured time zone.
func (s *SnapshotService) Today() time.Time {
	return startOfDay(s.now().In(s.cfg.Location))
}

// Load reads the site, its devices with their jobs, and the manpower and
// safety entries of date. Only the calendar fields of date are used, so a
// day parsed as UTC midnight names the same day in the configured zone. A
// zero date means today.
//
// Returns domain.ENOTFOUND if the site does not exist.
func (s *SnapshotService) Load(ctx context.Context, siteID uuid.UUID, date time.Time) (*domain.ReportData, error) {
	const op = "SnapshotService.Load"

	day := s.Today()
	if !date.IsZero() {
		day = calendarDay(date, s.cfg.Location)
	}

	site, err := s.store.GetSiteByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "site", siteID.String())
		}
		return nil, domain.Internal(err, op, "Failed to load site")
	}

	devices, err := s.loadDevices(ctx, siteID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load devices")
	}

	resources, err := s.store.ListResourcesBySiteAndDate(ctx, repository.ListResourcesBySiteAndDateParams{
		SiteID:       siteID,
		ResourceDate: day,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load manpower")
	}
	rows := make([]domain.DesignationCount, 0, len(resources))
	for _, r := range resources {
		rows = append(rows, domain.DesignationCount{
			Designation: r.Designation,
			DayShift:    finiteOrZero(r.Dayshift),
			NightShift:  finiteOrZero(r.Nightshift),
		})
	}

	data := &domain.ReportData{
		SiteID:         site.ID,
		SiteName:       site.Name,
		Site:           domain.SiteSnapshot{Devices: devices},
		Manpower:       domain.NewManpowerSnapshot(day, rows),
		ReportDate:     day,
		HeaderImageURL: s.cfg.HeaderImageURL,
	}

	safety, err := s.store.GetDailySafety(ctx, repository.GetDailySafetyParams{
		SiteID:     siteID,
		SafetyDate: day,
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// No entry for the day; both tables render defaults.
	case err != nil:
		return nil, domain.Internal(err, op, "Failed to load safety record")
	default:
		data.Safety = parseSafetyRecord(safety.Safety)
		data.TBT = parseTBTRecord(safety.Tbt)
	}

	s.logger.Debug("report snapshot loaded",
		"site_id", siteID,
		"date", day.Format(time.DateOnly),
		"devices", len(devices),
		"designations", len(rows),
		"has_safety", data.Safety != nil,
	)

	return data, nil
}

func (s *SnapshotService) loadDevices(ctx context.Context, siteID uuid.UUID) ([]domain.Device, error) {
	repoDevices, err := s.store.ListDevicesBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	repoJobs, err := s.store.ListDeviceJobsBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list device jobs: %w", err)
	}

	jobsByDevice := make(map[uuid.UUID][]domain.Job, len(repoDevices))
	for _, j := range repoJobs {
		status, ok := domain.ParseDeviceStatus(j.Status)
		if !ok {
			status = domain.DeviceStatusPending
		}
		jobsByDevice[j.DeviceID] = append(jobsByDevice[j.DeviceID], domain.Job{
			ID:      j.ID,
			Title:   j.Title,
			Status:  status,
			Comment: domain.NullStringValue(j.Comment),
		})
	}

	devices := make([]domain.Device, 0, len(repoDevices))
	for _, d := range repoDevices {
		status, ok := domain.ParseDeviceStatus(d.Status)
		if !ok {
			s.logger.Warn("unknown device status, counting as pending", "device_id", d.ID, "status", d.Status)
			status = domain.DeviceStatusPending
		}
		devices = append(devices, domain.Device{
			ID:           d.ID,
			SerialNumber: d.SerialNumber,
			Name:         d.Name,
			Type:         d.Type,
			Status:       status,
			Priority:     int(d.Priority),
			CreatedAt:    domain.NullTimeValue(d.CreatedAt),
			UpdatedAt:    domain.NullTimeValue(d.UpdatedAt),
			Jobs:         jobsByDevice[d.ID],
		})
	}
	return devices, nil
}

// parseSafetyRecord decodes the safety JSON object. Non-numeric values are
// read as 0; an absent or undecodable column yields a nil record.
func parseSafetyRecord(raw pqtype.NullRawMessage) domain.SafetyRecord {
	fields, ok := decodeObject(raw)
	if !ok {
		return nil
	}
	rec := make(domain.SafetyRecord, len(fields))
	for k, v := range fields {
		rec[domain.SafetyKey(k)] = coerceNumber(v)
	}
	return rec
}

// parseTBTRecord decodes the toolbox talk JSON object. Numbers are formatted
// as text; other non-string values become "".
func parseTBTRecord(raw pqtype.NullRawMessage) domain.TBTRecord {
	fields, ok := decodeObject(raw)
	if !ok {
		return nil
	}
	rec := make(domain.TBTRecord, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case string:
			rec[domain.TBTKey(k)] = t
		case float64:
			rec[domain.TBTKey(k)] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			rec[domain.TBTKey(k)] = ""
		}
	}
	return rec
}

func decodeObject(raw pqtype.NullRawMessage) (map[string]any, bool) {
	if !raw.Valid || len(raw.RawMessage) == 0 {
		return nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal(raw.RawMessage, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func coerceNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return finiteOrZero(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return finiteOrZero(f)
	}
	return 0
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func startOfDay(t time.Time) time.Time {
	return calendarDay(t, t.Location())
}

// calendarDay is midnight in loc of the year, month and day t shows in its
// own location.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
