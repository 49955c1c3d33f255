// Package domain contains core business types and interfaces.
//
// This file defines the report types used to export the SD Bird's Eye View
// spreadsheet for a site.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Report Format
// =============================================================================

// ReportFormat represents the output format of a report.
type ReportFormat string

const (
	// ReportFormatXLSX generates an Office Open XML spreadsheet.
	ReportFormatXLSX ReportFormat = "xlsx"
)

// String returns the string representation of the format.
func (f ReportFormat) String() string {
	return string(f)
}

// IsValid returns true if the format is a recognized value.
func (f ReportFormat) IsValid() bool {
	return f == ReportFormatXLSX
}

// ContentType returns the MIME content type for the format.
func (f ReportFormat) ContentType() string {
	switch f {
	case ReportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// FileExtension returns the file extension for the format.
func (f ReportFormat) FileExtension() string {
	return string(f)
}

// =============================================================================
// Report Record
// =============================================================================

// Report is a generated report stored in object storage.
type Report struct {
	ID          uuid.UUID
	SiteID      uuid.UUID
	UserID      uuid.UUID
	StorageKey  string
	Format      ReportFormat
	ReportDate  time.Time
	SizeBytes   int64
	GeneratedAt time.Time
}

// =============================================================================
// Report Data (generation input)
// =============================================================================

// ReportData aggregates everything the report generator needs. It is an
// immutable snapshot: generators never modify it.
type ReportData struct {
	SiteID   uuid.UUID
	SiteName string

	Site     SiteSnapshot
	Manpower ManpowerSnapshot
	Safety   SafetyRecord // nil when no safety entry exists for the day
	TBT      TBTRecord    // nil when no toolbox talk entry exists for the day

	// ReportDate is the date printed on the report.
	ReportDate time.Time

	// HeaderImageURL points at the logo placed in the header region. Optional.
	HeaderImageURL string
}

// ReportFilename returns the download filename for the report.
func (d *ReportData) ReportFilename(format ReportFormat) string {
	name := d.SiteName
	if name == "" {
		name = "site"
	}
	return "SD-Report-" + sanitizeFilename(name) + "-" + d.ReportDate.Format("2006-01-02") + "." + format.FileExtension()
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "site"
	}
	return string(out)
}
