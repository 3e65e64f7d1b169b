package handler

import (
	"net/http"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
)

// RegionResolution is the body of GET /regions/{label}.
type RegionResolution struct {
	Label  string        `json:"label"`
	Region domain.Region `json:"region"`
	// Valid is true only when label is exactly the region's full name.
	Valid bool `json:"valid"`
}

// ListRegions handles GET /regions. The closed set is returned in registry order.
func (s *Server) ListRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.regions.List())
}

// GetRegion handles GET /regions/{label}.
func (s *Server) GetRegion(w http.ResponseWriter, r *http.Request) {
	var label string
	if !bindPath(w, r, "label", &label) {
		return
	}

	reg, ok := s.regions.ResolveRegion(label)
	if !ok {
		writeError(w, http.StatusNotFound, notFoundBody("region not found"))
		return
	}
	writeJSON(w, http.StatusOK, RegionResolution{Label: label, Region: reg, Valid: s.regions.IsValid(label)})
}
