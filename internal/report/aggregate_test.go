package report

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func constraintDevice(serial string, priority int, updated time.Time, comments ...string) domain.Device {
	d := domain.Device{
		SerialNumber: serial,
		Status:       domain.DeviceStatusConstraint,
		Priority:     priority,
		UpdatedAt:    updated,
	}
	for _, c := range comments {
		d.Jobs = append(d.Jobs, domain.Job{Status: domain.DeviceStatusConstraint, Comment: c})
	}
	return d
}

func TestSDProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		other     int
		want      string
	}{
		{"empty site", 0, 0, "0.0%"},
		{"all complete", 4, 0, "100.0%"},
		{"three of seven", 3, 4, "42.9%"},
		{"one of three", 1, 2, "33.3%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var site domain.SiteSnapshot
			for i := 0; i < tt.completed; i++ {
				site.Devices = append(site.Devices, domain.Device{Status: domain.DeviceStatusCompleted})
			}
			for i := 0; i < tt.other; i++ {
				site.Devices = append(site.Devices, domain.Device{Status: domain.DeviceStatusPending})
			}

			ratio := SDProgress(site)
			if total := tt.completed + tt.other; total > 0 {
				assert.InDelta(t, float64(tt.completed)/float64(total), ratio, 1e-12)
			} else {
				assert.Equal(t, 0.0, ratio)
			}
			assert.Equal(t, tt.want, FormatPercent(ratio))
		})
	}
}

func TestConstraintRows_Order(t *testing.T) {
	devices := []domain.Device{
		constraintDevice("LOW", 1, day0.Add(5*time.Hour)),
		constraintDevice("HIGH-OLD", 5, day0),
		{SerialNumber: "DONE", Status: domain.DeviceStatusCompleted, Priority: 9},
		constraintDevice("HIGH-NEW", 5, day0.Add(time.Hour)),
		{Name: "Created only", Status: domain.DeviceStatusConstraint, Priority: 5, CreatedAt: day0.Add(30 * time.Minute)},
		{Status: domain.DeviceStatusConstraint, Priority: 1},
	}

	rows := ConstraintRows(devices, ConstraintRowLimit)

	var tags []string
	for _, r := range rows {
		tags = append(tags, r.Tag)
	}
	assert.Equal(t, []string{"HIGH-NEW", "Created only", "HIGH-OLD", "LOW", "-"}, tags)
}

func TestConstraintRows_IndependentOfInputOrder(t *testing.T) {
	var devices []domain.Device
	for i := 0; i < 30; i++ {
		// Collisions on priority and timestamp are intended.
		devices = append(devices, constraintDevice(
			fmt.Sprintf("DEV-%02d", i),
			i%3,
			day0.Add(time.Duration(i%4)*time.Hour),
			fmt.Sprintf("note %d", i),
		))
	}

	want := ConstraintRows(devices, ConstraintRowLimit)
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 20; n++ {
		shuffled := append([]domain.Device(nil), devices...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, ConstraintRows(shuffled, ConstraintRowLimit))
	}
}

func TestConstraintRows_Limit(t *testing.T) {
	var devices []domain.Device
	for i := 0; i < 50; i++ {
		devices = append(devices, constraintDevice(fmt.Sprintf("C%d", i), i, day0))
	}
	rows := ConstraintRows(devices, ConstraintRowLimit)
	require.Len(t, rows, 13)
	assert.Equal(t, "C49", rows[0].Tag)

	assert.Empty(t, ConstraintRows([]domain.Device{{Status: domain.DeviceStatusPending}}, ConstraintRowLimit))
	assert.Empty(t, ConstraintRows(nil, ConstraintRowLimit))
}

func TestConstraintRows_Comments(t *testing.T) {
	d := domain.Device{
		SerialNumber: "PV-101",
		Status:       domain.DeviceStatusConstraint,
		Jobs: []domain.Job{
			{Status: domain.DeviceStatusConstraint, Comment: "leak"},
			{Status: domain.DeviceStatusConstraint, Comment: ""},
			{Status: domain.DeviceStatusPending, Comment: "n/a"},
		},
	}
	rows := ConstraintRows([]domain.Device{d}, ConstraintRowLimit)
	require.Len(t, rows, 1)
	assert.Equal(t, "leak", rows[0].Comment)

	d.Jobs = append(d.Jobs, domain.Job{Status: domain.DeviceStatusConstraint, Comment: "awaiting scaffold"})
	rows = ConstraintRows([]domain.Device{d}, ConstraintRowLimit)
	assert.Equal(t, "leak; awaiting scaffold", rows[0].Comment)

	d.Jobs = nil
	rows = ConstraintRows([]domain.Device{d}, ConstraintRowLimit)
	assert.Equal(t, "-", rows[0].Comment)
}

func TestManpowerRows(t *testing.T) {
	entries := []domain.DesignationCount{
		{Designation: "Welder", DayShift: 4, NightShift: 2},
		{Designation: "Fitter", DayShift: 10, NightShift: 0},
		{Designation: "Rigger", DayShift: 3, NightShift: 3},
		{Designation: "Welder", DayShift: 1},
	}

	rows := ManpowerRows(entries, ManpowerRowLimit)
	assert.Equal(t, []ManpowerRow{
		{"Fitter", 10},
		{"Welder", 7},
		{"Rigger", 6},
	}, rows)
	assert.Equal(t, 23.0, TotalManpower(entries))
}

func TestManpowerRows_BlankDesignation(t *testing.T) {
	entries := []domain.DesignationCount{
		{Designation: "", DayShift: 2},
		{Designation: "  ", NightShift: 3},
		{Designation: "Fitter", DayShift: 1},
	}

	rows := ManpowerRows(entries, ManpowerRowLimit)
	assert.Equal(t, []ManpowerRow{
		{noDesignation, 5},
		{"Fitter", 1},
	}, rows)
}

func TestManpowerRows_Overflow(t *testing.T) {
	var entries []domain.DesignationCount
	for i := 0; i < 20; i++ {
		entries = append(entries, domain.DesignationCount{
			Designation: fmt.Sprintf("Role %02d", i),
			DayShift:    float64(100 - i),
			NightShift:  1,
		})
	}

	rows := ManpowerRows(entries, ManpowerRowLimit)
	require.Len(t, rows, 13)
	assert.Equal(t, "Role 00", rows[0].Designation)
	assert.Equal(t, "Role 11", rows[11].Designation)

	other := rows[12]
	assert.Equal(t, "Other", other.Designation)
	var wantOther float64
	for i := 12; i < 20; i++ {
		wantOther += float64(100-i) + 1
	}
	assert.Equal(t, wantOther, other.Count)

	var shown float64
	for _, r := range rows {
		shown += r.Count
	}
	assert.Equal(t, TotalManpower(entries), shown)
}

func TestManpowerRows_ExactlyThirteen(t *testing.T) {
	var entries []domain.DesignationCount
	for i := 0; i < 13; i++ {
		entries = append(entries, domain.DesignationCount{Designation: fmt.Sprintf("Role %02d", i), DayShift: 1})
	}
	rows := ManpowerRows(entries, ManpowerRowLimit)
	require.Len(t, rows, 13)
	for _, r := range rows {
		assert.NotEqual(t, "Other", r.Designation)
	}
}

func TestSafetyDefaults(t *testing.T) {
	tbt := TBTRows(nil)
	require.Len(t, tbt, 5)
	for _, r := range tbt {
		assert.NotEmpty(t, r.Topic)
		assert.Equal(t, "", r.Observation)
	}

	safety := SafetyRows(nil)
	require.Len(t, safety, 5)
	for _, r := range safety {
		assert.Equal(t, 0.0, r.Count)
	}
	assert.Equal(t, 0.0, IncidentReport(nil))

	rec := domain.SafetyRecord{domain.SafetyFirstAid: 2, domain.SafetyIncidentReport: 1}
	safety = SafetyRows(rec)
	assert.Equal(t, SafetyRow{"First Aid", 2}, safety[1])
	assert.Equal(t, 1.0, IncidentReport(rec))
}
