// Package domain contains the core data types for the growth logbook trip map.
// This package has zero external dependencies and is imported by every other
// internal package (region, repo, service, mapview, handler).
package domain

import "time"

// MaxRating is the highest value a TripRecord.Rating may hold.
const MaxRating = 5

// TripRecord is a user-authored visit to exactly one Region.
// At most one record exists per region identity; saving a record for a
// region that already has one replaces it wholesale.
//
// The JSON shape matches the documents stored under the trips key so
// collections written by earlier versions of the logbook load unchanged.
type TripRecord struct {
	// Province is the region label. After a successful save it always holds
	// the region's full name (e.g. "北京市", never "北京").
	Province  string    `json:"province"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Travelers string    `json:"travelers"`
	Rating    int       `json:"rating"`
	Notes     string    `json:"notes"`
	Photos    []string  `json:"photos"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy of t whose Photos slice does not alias t's.
func (t TripRecord) Clone() TripRecord {
	c := t
	if t.Photos != nil {
		c.Photos = append([]string(nil), t.Photos...)
	}
	return c
}
