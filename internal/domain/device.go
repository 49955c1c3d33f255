// Package domain contains core business types and interfaces.
//
// This file defines devices tracked during a shutdown (SD) and the work jobs
// attached to them.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Device Status
// =============================================================================

// DeviceStatus represents the progress state of a device during a shutdown.
type DeviceStatus string

const (
	DeviceStatusPending    DeviceStatus = "PENDING"
	DeviceStatusInProgress DeviceStatus = "IN_PROGRESS"
	DeviceStatusCompleted  DeviceStatus = "COMPLETED"
	// DeviceStatusConstraint marks a device whose progress is blocked.
	DeviceStatusConstraint DeviceStatus = "CONSTRAINT"
)

// DeviceStatuses lists the statuses in report stacking order.
var DeviceStatuses = []DeviceStatus{
	DeviceStatusCompleted,
	DeviceStatusInProgress,
	DeviceStatusPending,
	DeviceStatusConstraint,
}

// String returns the string representation of the status.
func (s DeviceStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s DeviceStatus) IsValid() bool {
	switch s {
	case DeviceStatusPending, DeviceStatusInProgress,
		DeviceStatusCompleted, DeviceStatusConstraint:
		return true
	}
	return false
}

// ParseDeviceStatus normalizes free-form input ("in progress", "In_Progress")
// to a DeviceStatus.
func ParseDeviceStatus(s string) (DeviceStatus, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	status := DeviceStatus(norm)
	return status, status.IsValid()
}

// =============================================================================
// Job Status
// =============================================================================

// JobStatus is the state of a single work job on a device. Jobs share the
// device status vocabulary.
type JobStatus = DeviceStatus

// Job is a unit of work on a device. Only the fields used for reporting are
// carried here.
type Job struct {
	ID      uuid.UUID
	Title   string
	Status  JobStatus
	Comment string
}

// =============================================================================
// Device
// =============================================================================

// Device is a piece of equipment tracked on a site.
type Device struct {
	ID           uuid.UUID
	SerialNumber string
	Name         string
	Type         string // free-text category
	Status       DeviceStatus
	Priority     int
	CreatedAt    time.Time // zero when unknown
	UpdatedAt    time.Time // zero when unknown
	Jobs         []Job
}

// Tag returns the label used for the device in reports: serial number, then
// name, then "-".
func (d *Device) Tag() string {
	if s := strings.TrimSpace(d.SerialNumber); s != "" {
		return s
	}
	if s := strings.TrimSpace(d.Name); s != "" {
		return s
	}
	return "-"
}

// LastActivity returns UpdatedAt, falling back to CreatedAt, then the Unix epoch.
func (d *Device) LastActivity() time.Time {
	if !d.UpdatedAt.IsZero() {
		return d.UpdatedAt
	}
	if !d.CreatedAt.IsZero() {
		return d.CreatedAt
	}
	return time.Unix(0, 0).UTC()
}

// ConstraintComments returns the non-empty comments of jobs in CONSTRAINT
// status, in job order.
func (d *Device) ConstraintComments() []string {
	var comments []string
	for _, j := range d.Jobs {
		if j.Status != DeviceStatusConstraint {
			continue
		}
		if c := strings.TrimSpace(j.Comment); c != "" {
			comments = append(comments, c)
		}
	}
	return comments
}

// IsConstraint returns true if the device is blocked.
func (d *Device) IsConstraint() bool {
	return d.Status == DeviceStatusConstraint
}
