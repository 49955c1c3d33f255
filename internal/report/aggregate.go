package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/DukeRupert/sdview/internal/domain"
)

// Table sizes of the fixed layout.
const (
	ConstraintRowLimit = 13
	ManpowerRowLimit   = 13

	otherDesignation = "Other"
	noComment        = "-"
	noDesignation    = "-"
	commentSeparator = "; "
)

// =============================================================================
// SD Progress
// =============================================================================

// SDProgress returns the completed/total device ratio, 0 for an empty site.
func SDProgress(site domain.SiteSnapshot) float64 {
	return site.Progress()
}

// FormatPercent renders a ratio as a percentage with one decimal ("42.9%").
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// =============================================================================
// Constraint Table
// =============================================================================

// ConstraintRow is one line of the constraint table.
type ConstraintRow struct {
	Tag     string
	Comment string
}

// ConstraintRows returns up to limit rows for devices in CONSTRAINT status,
// ordered by priority (highest first) then most recent activity. Tag and
// comment break any remaining ties so the order never depends on input order.
func ConstraintRows(devices []domain.Device, limit int) []ConstraintRow {
	type entry struct {
		dev     *domain.Device
		row     ConstraintRow
		touched int64
	}

	var entries []entry
	for i := range devices {
		d := &devices[i]
		if !d.IsConstraint() {
			continue
		}
		comment := noComment
		if cs := d.ConstraintComments(); len(cs) > 0 {
			comment = strings.Join(cs, commentSeparator)
		}
		entries = append(entries, entry{
			dev:     d,
			row:     ConstraintRow{Tag: d.Tag(), Comment: comment},
			touched: d.LastActivity().UnixNano(),
		})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.dev.Priority, a.dev.Priority); c != 0 {
			return c
		}
		if c := cmp.Compare(b.touched, a.touched); c != 0 {
			return c
		}
		if c := cmp.Compare(a.row.Tag, b.row.Tag); c != 0 {
			return c
		}
		return cmp.Compare(a.row.Comment, b.row.Comment)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	rows := make([]ConstraintRow, len(entries))
	for i, e := range entries {
		rows[i] = e.row
	}
	return rows
}

// =============================================================================
// Manpower Table
// =============================================================================

// ManpowerRow is one line of the manpower table.
type ManpowerRow struct {
	Designation string
	Count       float64
}

// ManpowerRows merges entries by designation and orders them by headcount
// (largest first, then by name). When there are more designations than
// limit, the first limit-1 are kept and the rest are summed into an "Other"
// row, so at most limit rows are returned.
func ManpowerRows(entries []domain.DesignationCount, limit int) []ManpowerRow {
	if limit <= 0 {
		return nil
	}

	index := make(map[string]int)
	var rows []ManpowerRow
	for _, e := range entries {
		name := strings.TrimSpace(e.Designation)
		if name == "" {
			name = noDesignation
		}
		i, ok := index[name]
		if !ok {
			i = len(rows)
			index[name] = i
			rows = append(rows, ManpowerRow{Designation: name})
		}
		rows[i].Count += e.Total()
	}

	slices.SortStableFunc(rows, func(a, b ManpowerRow) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Designation, b.Designation)
	})

	if len(rows) <= limit {
		return rows
	}

	other := ManpowerRow{Designation: otherDesignation}
	for _, r := range rows[limit-1:] {
		other.Count += r.Count
	}
	return append(rows[:limit-1:limit-1], other)
}

// TotalManpower sums day and night headcount over every entry.
func TotalManpower(entries []domain.DesignationCount) float64 {
	var total float64
	for _, e := range entries {
		total += e.Total()
	}
	return total
}

// =============================================================================
// Safety Section
// =============================================================================

// TBTRow pairs a toolbox talk topic with the day's observation.
type TBTRow struct {
	Topic       string
	Observation string
}

// SafetyRow pairs a safety statistic label with its count.
type SafetyRow struct {
	Label string
	Count float64
}

// TBTRows resolves every topic against rec; missing topics are empty.
func TBTRows(rec domain.TBTRecord) []TBTRow {
	rows := make([]TBTRow, len(domain.TBTFields))
	for i, f := range domain.TBTFields {
		rows[i] = TBTRow{Topic: f.Label, Observation: rec.Value(f.Key)}
	}
	return rows
}

// SafetyRows resolves every statistic against rec; missing counts are 0.
func SafetyRows(rec domain.SafetyRecord) []SafetyRow {
	rows := make([]SafetyRow, len(domain.SafetyFields))
	for i, f := range domain.SafetyFields {
		rows[i] = SafetyRow{Label: f.Label, Count: rec.Value(f.Key)}
	}
	return rows
}

// IncidentReport returns the incident report count, 0 when absent.
func IncidentReport(rec domain.SafetyRecord) float64 {
	return rec.Value(domain.SafetyIncidentReport)
}
