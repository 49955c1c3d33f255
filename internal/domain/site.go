package domain

import (
	"time"

	"github.com/google/uuid"
)

// Site is a plant or warehouse where a shutdown is being tracked.
type Site struct {
	ID        uuid.UUID
	Name      string
	Location  string
	CreatedBy uuid.NullUUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SiteSnapshot is the read-only device view of a site used by reports.
type SiteSnapshot struct {
	Devices []Device
}

// CountByStatus returns the number of devices in each status.
func (s SiteSnapshot) CountByStatus() map[DeviceStatus]int {
	counts := make(map[DeviceStatus]int, len(DeviceStatuses))
	for _, d := range s.Devices {
		counts[d.Status]++
	}
	return counts
}

// Progress returns completed/total as a ratio in [0, 1]; 0 when there are no
// devices.
func (s SiteSnapshot) Progress() float64 {
	total := len(s.Devices)
	if total == 0 {
		return 0
	}
	completed := 0
	for _, d := range s.Devices {
		if d.Status == DeviceStatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(total)
}
