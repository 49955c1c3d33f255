package domain

import "time"

// DesignationCount is the headcount of one job-role on a given day.
type DesignationCount struct {
	Designation string  `json:"designation"`
	DayShift    float64 `json:"dayshift"`
	NightShift  float64 `json:"nightshift"`
}

// Total returns the combined day and night headcount.
func (d DesignationCount) Total() float64 {
	return d.DayShift + d.NightShift
}

// ShiftComparison holds headcount totals per shift.
type ShiftComparison struct {
	DayShift   float64 `json:"dayshift"`
	NightShift float64 `json:"nightshift"`
}

// Total returns the combined headcount across shifts.
func (s ShiftComparison) Total() float64 {
	return s.DayShift + s.NightShift
}

// DateSpecificData is the manpower breakdown for one day.
type DateSpecificData struct {
	DesignationData []DesignationCount `json:"designationData"`
	ShiftComparison ShiftComparison    `json:"shiftComparison"`
}

// ManpowerSnapshot is the manpower input to a report.
type ManpowerSnapshot struct {
	Date             time.Time        `json:"date"`
	DateSpecificData DateSpecificData `json:"dateSpecificData"`
}

// NewManpowerSnapshot builds a snapshot whose shift comparison is derived from
// the designation rows.
func NewManpowerSnapshot(date time.Time, rows []DesignationCount) ManpowerSnapshot {
	var cmp ShiftComparison
	for _, r := range rows {
		cmp.DayShift += r.DayShift
		cmp.NightShift += r.NightShift
	}
	return ManpowerSnapshot{
		Date: date,
		DateSpecificData: DateSpecificData{
			DesignationData: rows,
			ShiftComparison: cmp,
		},
	}
}
