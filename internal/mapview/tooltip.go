package mapview

import (
	"html"
	"strings"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
)

// Tooltip is the hover content for one region.
type Tooltip struct {
	Label     string          `json:"label"`
	RegionID  domain.RegionID `json:"regionId,omitempty"`
	HasTrip   bool            `json:"hasTrip"`
	DateRange string          `json:"dateRange,omitempty"`
	Travelers string          `json:"travelers,omitempty"`
	Rating    int             `json:"rating,omitempty"`
	Stars     string          `json:"stars,omitempty"`
	// HTML is the rendered markup handed to the renderer's formatter.
	HTML string `json:"html"`
}

// Stars renders rating as five filled or hollow stars.
func Stars(rating int) string {
	rating = max(0, min(rating, domain.MaxRating))
	return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxRating-rating)
}

func tripTooltip(label string, trip domain.TripRecord, id domain.RegionID) Tooltip {
	tt := Tooltip{
		Label:     label,
		RegionID:  id,
		HasTrip:   true,
		Travelers: trip.Travelers,
		Rating:    trip.Rating,
	}
	if trip.StartDate != "" && trip.EndDate != "" {
		tt.DateRange = trip.StartDate + " - " + trip.EndDate
	}
	if trip.Rating > 0 {
		tt.Stars = Stars(trip.Rating)
	}

	lines := []string{"<strong>" + html.EscapeString(label) + "</strong>"}
	lines = append(lines, orDefault(tt.DateRange, "No dates"))
	if tt.Travelers != "" {
		lines = append(lines, "Travelled with: "+html.EscapeString(tt.Travelers))
	} else {
		lines = append(lines, "No travel companions")
	}
	if tt.Stars != "" {
		lines = append(lines, "Rating: "+tt.Stars)
	} else {
		lines = append(lines, "Not rated")
	}
	lines = append(lines, "", "<small>Click for details</small>")
	tt.HTML = strings.Join(lines, "<br/>")
	return tt
}

func emptyTooltip(label string, id domain.RegionID) Tooltip {
	return Tooltip{
		Label:    label,
		RegionID: id,
		HTML:     html.EscapeString(label) + "<br/><small>No trips recorded</small>",
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return html.EscapeString(fallback)
	}
	return html.EscapeString(s)
}
