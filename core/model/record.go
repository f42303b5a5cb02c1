package model

import (
	"fmt"
	"time"
)

// ZoneType categorises the demand pattern of a parking zone.
type ZoneType string

const (
	ZoneOffice      ZoneType = "office"
	ZoneMall        ZoneType = "mall"
	ZoneResidential ZoneType = "residential"
	ZoneHospital    ZoneType = "hospital"
	ZoneStation     ZoneType = "station"
)

// ParseZoneType validates a zone type string.
func ParseZoneType(s string) (ZoneType, error) {
	switch ZoneType(s) {
	case ZoneOffice, ZoneMall, ZoneResidential, ZoneHospital, ZoneStation:
		return ZoneType(s), nil
	}
	return "", fmt.Errorf("unknown zone type %q", s)
}

// OccupancyRecord is a single hourly occupancy observation for a zone.
// Day is a relative sequencing key (1..N), not calendar-aware.
type OccupancyRecord struct {
	ZoneID    string  `json:"zone_id"`
	Day       int     `json:"day"`
	Hour      int     `json:"hour"`
	Occupancy float64 `json:"occupancy"`
	IsWeekend bool    `json:"is_weekend"`
}

// Validate checks the record's value domains.
func (r OccupancyRecord) Validate() error {
	if r.ZoneID == "" {
		return fmt.Errorf("zone_id is required")
	}
	if r.Day < 1 {
		return fmt.Errorf("day must be >= 1, got %d", r.Day)
	}
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("hour must be in 0..23, got %d", r.Hour)
	}
	if r.Occupancy < 0 || r.Occupancy > 100 {
		return fmt.Errorf("occupancy must be in 0..100, got %g", r.Occupancy)
	}
	return nil
}

// OccupancyReading is a live sensor reading as received from a zone
// sensor, before it is turned into a dataset record.
type OccupancyReading struct {
	ZoneID    string    `json:"zone_id"`
	Day       int       `json:"day"`
	Hour      int       `json:"hour"`
	Occupancy float64   `json:"occupancy"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Record derives the persisted dataset record, computing the weekend
// flag the same way the dataset generator does.
func (r OccupancyReading) Record() OccupancyRecord {
	return OccupancyRecord{
		ZoneID:    r.ZoneID,
		Day:       r.Day,
		Hour:      r.Hour,
		Occupancy: r.Occupancy,
		IsWeekend: IsWeekendDay(r.Day),
	}
}

// IsWeekendDay reports whether the relative day index falls on a
// weekend under the dataset's day-of-month convention (day mod 7 in
// {0, 6}).
func IsWeekendDay(day int) bool {
	m := day % 7
	return m == 0 || m == 6
}
