package domain

import "time"

// ExportRow is a single row in the full-data export.
// It is a flat view of one TripRecord joined with its Region: one row per
// trip, in storage order. Photos are exported as a count only because photo
// references may be large data URLs.
type ExportRow struct {
	RegionID    RegionID
	Province    string // full name as stored
	DisplayName string
	StartDate   string
	EndDate     string
	Travelers   string
	Rating      int
	Notes       string
	PhotoCount  int
	UpdatedAt   time.Time
}
