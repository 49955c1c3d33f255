package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/DukeRupert/sdview/internal/report"
	"github.com/DukeRupert/sdview/internal/repository"
	"github.com/DukeRupert/sdview/internal/storage"
	"github.com/DukeRupert/sdview/internal/worker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeSnapshots struct {
	data     *domain.ReportData
	err      error
	gotSite  uuid.UUID
	gotDate  time.Time
	numCalls int
}

func (f *fakeSnapshots) Load(_ context.Context, siteID uuid.UUID, date time.Time) (*domain.ReportData, error) {
	f.numCalls++
	f.gotSite = siteID
	f.gotDate = date
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeRecorder struct {
	created []repository.CreateReportParams
	err     error
}

func (f *fakeRecorder) CreateReport(_ context.Context, arg repository.CreateReportParams) (repository.Report, error) {
	if f.err != nil {
		return repository.Report{}, f.err
	}
	f.created = append(f.created, arg)
	return repository.Report{ID: uuid.New(), SiteID: arg.SiteID, StorageKey: arg.StorageKey}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, testLogger())
	require.NoError(t, err)
	return s
}

func sampleData(siteID uuid.UUID) *domain.ReportData {
	return &domain.ReportData{
		SiteID:   siteID,
		SiteName: "North Plant",
		Site: domain.SiteSnapshot{Devices: []domain.Device{
			{ID: uuid.New(), SerialNumber: "P-101", Type: "Pump", Status: domain.DeviceStatusCompleted},
			{ID: uuid.New(), SerialNumber: "V-7", Type: "Valve", Status: domain.DeviceStatusConstraint},
		}},
		Manpower: domain.NewManpowerSnapshot(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), []domain.DesignationCount{
			{Designation: "Fitter", DayShift: 10, NightShift: 6},
		}),
		ReportDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func payloadFor(t *testing.T, p worker.GenerateReportPayload) []byte {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return b
}

func TestGenerateReportHandler_Success(t *testing.T) {
	siteID := uuid.New()
	userID := uuid.New()
	snaps := &fakeSnapshots{data: sampleData(siteID)}
	rec := &fakeRecorder{}
	store := newTestStorage(t)

	h := NewGenerateReportHandler(snaps, report.NewXLSXGenerator(nil, testLogger()), store, rec, testLogger())
	assert.Equal(t, worker.JobTypeGenerateReport, h.Type())

	err := h.Handle(context.Background(), payloadFor(t, worker.GenerateReportPayload{
		SiteID: siteID,
		UserID: userID,
		Date:   "2024-05-01",
	}))
	require.NoError(t, err)

	assert.Equal(t, siteID, snaps.gotSite)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), snaps.gotDate)

	require.Len(t, rec.created, 1)
	created := rec.created[0]
	assert.Equal(t, siteID, created.SiteID)
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, "xlsx", created.Format)
	assert.True(t, strings.HasPrefix(created.StorageKey, "sites/"+siteID.String()+"/reports/"))
	assert.Positive(t, created.SizeBytes)

	rc, info, err := store.Get(context.Background(), created.StorageKey)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, created.SizeBytes, info.Size)

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{report.SheetName}, f.GetSheetList())
}

func TestGenerateReportHandler_EmptyDateMeansToday(t *testing.T) {
	siteID := uuid.New()
	snaps := &fakeSnapshots{data: sampleData(siteID)}
	h := NewGenerateReportHandler(snaps, report.NewXLSXGenerator(nil, testLogger()), newTestStorage(t), &fakeRecorder{}, testLogger())

	require.NoError(t, h.Handle(context.Background(), payloadFor(t, worker.GenerateReportPayload{
		SiteID: siteID,
		UserID: uuid.New(),
	})))
	assert.True(t, snaps.gotDate.IsZero())
}

func TestGenerateReportHandler_PermanentErrors(t *testing.T) {
	siteID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name    string
		payload []byte
		snapErr error
	}{
		{"malformed json", []byte(`{not json`), nil},
		{"missing site", payloadFor(t, worker.GenerateReportPayload{UserID: userID}), nil},
		{"bad date", payloadFor(t, worker.GenerateReportPayload{SiteID: siteID, UserID: userID, Date: "05/01/2024"}), nil},
		{"site not found", payloadFor(t, worker.GenerateReportPayload{SiteID: siteID, UserID: userID}),
			domain.NotFound("SnapshotService.Load", "site", siteID.String())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snaps := &fakeSnapshots{data: sampleData(siteID), err: tt.snapErr}
			rec := &fakeRecorder{}
			h := NewGenerateReportHandler(snaps, report.NewXLSXGenerator(nil, testLogger()), newTestStorage(t), rec, testLogger())

			err := h.Handle(context.Background(), tt.payload)
			require.Error(t, err)
			assert.True(t, worker.IsPermanent(err), "expected permanent error, got %v", err)
			assert.Empty(t, rec.created)
		})
	}
}

func TestGenerateReportHandler_RetryableErrors(t *testing.T) {
	siteID := uuid.New()
	payload := payloadFor(t, worker.GenerateReportPayload{SiteID: siteID, UserID: uuid.New()})

	t.Run("snapshot failure", func(t *testing.T) {
		snaps := &fakeSnapshots{err: domain.Internal(errors.New("db down"), "SnapshotService.Load", "Failed to load site")}
		h := NewGenerateReportHandler(snaps, report.NewXLSXGenerator(nil, testLogger()), newTestStorage(t), &fakeRecorder{}, testLogger())

		err := h.Handle(context.Background(), payload)
		require.Error(t, err)
		assert.False(t, worker.IsPermanent(err))
	})

	t.Run("record failure removes the upload", func(t *testing.T) {
		dir := t.TempDir()
		store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: dir}, testLogger())
		require.NoError(t, err)
		rec := &fakeRecorder{err: errors.New("insert failed")}
		h := NewGenerateReportHandler(&fakeSnapshots{data: sampleData(siteID)}, report.NewXLSXGenerator(nil, testLogger()), store, rec, testLogger())

		err = h.Handle(context.Background(), payload)
		require.Error(t, err)
		assert.False(t, worker.IsPermanent(err))

		entries, err := os.ReadDir(filepath.Join(dir, "sites", siteID.String(), "reports"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

// rejectingStorage fails every Put with err.
type rejectingStorage struct {
	*storage.LocalStorage
	err error
}

func (s rejectingStorage) Put(context.Context, string, io.Reader, storage.PutOptions) error {
	return s.err
}

func TestGenerateReportHandler_UploadErrors(t *testing.T) {
	siteID := uuid.New()
	payload := payloadFor(t, worker.GenerateReportPayload{SiteID: siteID, UserID: uuid.New()})

	tests := []struct {
		name          string
		putErr        error
		wantPermanent bool
	}{
		{"too large", &storage.StorageError{Op: "Put", Key: "k", Err: storage.ErrTooLarge}, true},
		{"transient", &storage.StorageError{Op: "Put", Key: "k", Err: errors.New("connection reset")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := rejectingStorage{LocalStorage: newTestStorage(t), err: tt.putErr}
			rec := &fakeRecorder{}
			h := NewGenerateReportHandler(&fakeSnapshots{data: sampleData(siteID)}, report.NewXLSXGenerator(nil, testLogger()), store, rec, testLogger())

			err := h.Handle(context.Background(), payload)
			require.Error(t, err)
			assert.Equal(t, tt.wantPermanent, worker.IsPermanent(err))
			assert.Empty(t, rec.created)
		})
	}
}
