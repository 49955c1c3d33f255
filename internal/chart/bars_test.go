package chart

import (
	"testing"

	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devicesOf(typ string, status domain.DeviceStatus, n int) []domain.Device {
	out := make([]domain.Device, n)
	for i := range out {
		out[i] = domain.Device{Type: typ, Status: status}
	}
	return out
}

func TestGroupByType(t *testing.T) {
	var devices []domain.Device
	devices = append(devices, devicesOf("Valve", domain.DeviceStatusCompleted, 2)...)
	devices = append(devices, devicesOf("Pump", domain.DeviceStatusPending, 1)...)
	devices = append(devices, devicesOf("Valve", domain.DeviceStatusConstraint, 1)...)
	devices = append(devices, devicesOf("  ", domain.DeviceStatusInProgress, 1)...)

	groups := GroupByType(devices)
	require.Len(t, groups, 3)

	assert.Equal(t, TypeCounts{Type: "Valve", Completed: 2, Constraint: 1, Total: 3}, groups[0])
	assert.Equal(t, TypeCounts{Type: "Pump", Pending: 1, Total: 1}, groups[1])
	assert.Equal(t, TypeCounts{Type: "Unspecified", InProgress: 1, Total: 1}, groups[2])
}

func TestGroupByType_Empty(t *testing.T) {
	assert.Empty(t, GroupByType(nil))
}

func TestSegments_WidthsFollowStatusOrder(t *testing.T) {
	g := TypeCounts{Type: "Valve", Completed: 50, InProgress: 30, Pending: 10, Constraint: 10, Total: 100}
	const width = 400.0

	segs := Segments(g, width)
	require.Len(t, segs, 4)

	want := []struct {
		status domain.DeviceStatus
		width  float64
		x      float64
	}{
		{domain.DeviceStatusCompleted, 200, 0},
		{domain.DeviceStatusInProgress, 120, 200},
		{domain.DeviceStatusPending, 40, 320},
		{domain.DeviceStatusConstraint, 40, 360},
	}
	for i, w := range want {
		assert.Equal(t, w.status, segs[i].Status)
		assert.InDelta(t, w.width, segs[i].Width, 1e-9)
		assert.InDelta(t, w.x, segs[i].X, 1e-9)
		assert.True(t, segs[i].Labeled(), "%s share exceeds 5%%", w.status)
	}
}

func TestSegments_LabelThreshold(t *testing.T) {
	tests := []struct {
		name    string
		counts  TypeCounts
		labeled []bool
	}{
		{
			name:    "exactly five percent is unlabeled",
			counts:  TypeCounts{Completed: 95, Pending: 5, Total: 100},
			labeled: []bool{true, false},
		},
		{
			name:    "just over five percent is labeled",
			counts:  TypeCounts{Completed: 94, Constraint: 6, Total: 100},
			labeled: []bool{true, true},
		},
		{
			name:    "tiny segment",
			counts:  TypeCounts{Completed: 99, InProgress: 1, Total: 100},
			labeled: []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Segments(tt.counts, 100)
			require.Len(t, segs, len(tt.labeled))
			for i, want := range tt.labeled {
				assert.Equal(t, want, segs[i].Labeled())
			}
		})
	}
}

func TestSegments_ZeroTotal(t *testing.T) {
	assert.Nil(t, Segments(TypeCounts{Type: "Valve"}, 100))
}

func TestDrawStatusBars_Placeholder(t *testing.T) {
	rec := newRecorder(BarsWidth, BarsHeight)
	DrawStatusBars(rec, nil)

	assert.True(t, rec.hasText("No Data Available"))
	assert.True(t, rec.hasText("Device Status by Type"))
	assert.Len(t, rec.rectsWithColor(colorPlaceholder), 1)
	assert.Len(t, rec.byKind("stroke"), 1)
}

func TestDrawStatusBars_Bars(t *testing.T) {
	groups := []TypeCounts{
		{Type: "Valve", Completed: 50, InProgress: 30, Pending: 10, Constraint: 10, Total: 100},
		{Type: "Pump", Completed: 1, Total: 1},
	}

	rec := newRecorder(BarsWidth, BarsHeight)
	DrawStatusBars(rec, groups)

	chartWidth := float64(BarsWidth) - barsMarginLeft - barsMarginRight

	// One segment per non-zero status plus one legend swatch per status.
	completed := rec.rectsWithColor(StatusColors[domain.DeviceStatusCompleted])
	require.Len(t, completed, 3)
	assert.InDelta(t, 0.5*chartWidth, completed[0].w, 1e-9)
	assert.Equal(t, barsMarginLeft, completed[0].x)
	assert.InDelta(t, chartWidth, completed[1].w, 1e-9)

	for _, label := range []string{"50%", "30%", "10%", "100%"} {
		assert.True(t, rec.hasText(label), "missing label %s", label)
	}

	var typeLabels []op
	for _, o := range rec.byKind("text") {
		if o.text == "Valve" || o.text == "Pump" {
			typeLabels = append(typeLabels, o)
		}
	}
	require.Len(t, typeLabels, 2)
	for _, l := range typeLabels {
		assert.Equal(t, AlignRight, l.align)
		assert.Less(t, l.x, barsMarginLeft)
	}

	for _, legend := range []string{"Completed", "In Progress", "Pending", "Constraint"} {
		assert.True(t, rec.hasText(legend), "missing legend %s", legend)
	}
	assert.False(t, rec.hasText("No Data Available"))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "In Progress", StatusLabel(domain.DeviceStatusInProgress))
	assert.Equal(t, "Completed", StatusLabel(domain.DeviceStatusCompleted))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Valve", truncate("Valve", 18))
	assert.Equal(t, "Instrumentation...", truncate("Instrumentation Loop Checks", 18))
}
