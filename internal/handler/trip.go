package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
)

// Trip is the API representation of a stored trip.
type Trip struct {
	RegionID    domain.RegionID `json:"regionId,omitempty"`
	DisplayName string          `json:"displayName,omitempty"`
	domain.TripRecord
}

// TripRequest is the body of PUT /trips/{region}. The region comes from the
// path; every other field replaces the stored value, absent ones included.
type TripRequest struct {
	StartDate *openapi_types.Date `json:"startDate,omitempty"`
	EndDate   *openapi_types.Date `json:"endDate,omitempty"`
	Travelers string              `json:"travelers"`
	Rating    int                 `json:"rating"`
	Notes     string              `json:"notes"`
	Photos    []string            `json:"photos"`
}

// PhotoRequest is the body of POST /trips/{region}/photos.
type PhotoRequest struct {
	Ref string `json:"ref"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type TripPage struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type VisitedResponse struct {
	Regions []domain.RegionID `json:"regions"`
	Count   int               `json:"count"`
}

type ImportResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=50, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeError(w, http.StatusUnprocessableEntity, requestBody("invalid page parameter"))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusUnprocessableEntity, requestBody("invalid limit parameter"))
		return
	}

	params := domain.NewPaginationParams(page, limit)
	trips, total, err := s.trips.ListPaged(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, err, "trips not found")
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = s.tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripPage{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetTrip handles GET /trips/{region}. The region may be any label that
// resolves: short name, full name or canonical identity.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	var label string
	if !bindPath(w, r, "region", &label) {
		return
	}

	trip, err := s.trips.GetByRegion(r.Context(), label)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, s.tripToResponse(trip))
}

// SaveTrip handles PUT /trips/{region}. The stored record for the region is
// replaced, or created when there is none.
func (s *Server) SaveTrip(w http.ResponseWriter, r *http.Request) {
	var label string
	if !bindPath(w, r, "region", &label) {
		return
	}
	var body TripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	saved, err := s.trips.Save(r.Context(), requestToTrip(label, body))
	if err != nil {
		s.writeServiceError(w, r, err, "region not found")
		return
	}
	s.refreshMap(r.Context())
	writeJSON(w, http.StatusOK, s.tripToResponse(saved))
}

// DeleteTrip handles DELETE /trips/{region}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	var label string
	if !bindPath(w, r, "region", &label) {
		return
	}

	if err := s.trips.Delete(r.Context(), label); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	s.refreshMap(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// AddPhoto handles POST /trips/{region}/photos.
func (s *Server) AddPhoto(w http.ResponseWriter, r *http.Request) {
	var label string
	if !bindPath(w, r, "region", &label) {
		return
	}
	var body PhotoRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	trip, err := s.trips.AddPhoto(r.Context(), label, body.Ref)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, s.tripToResponse(trip))
}

// RemovePhoto handles DELETE /trips/{region}/photos/{index}.
func (s *Server) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	var (
		label string
		index int
	)
	if !bindPath(w, r, "region", &label) || !bindPath(w, r, "index", &index) {
		return
	}

	trip, err := s.trips.RemovePhoto(r.Context(), label, index)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, s.tripToResponse(trip))
}

// ListVisited handles GET /visited.
func (s *Server) ListVisited(w http.ResponseWriter, r *http.Request) {
	ids, err := s.trips.VisitedRegions(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "visited regions not found")
		return
	}
	writeJSON(w, http.StatusOK, VisitedResponse{Regions: ids, Count: len(ids)})
}

// PostImport handles POST /import. The body is a JSON array of trip records
// in the stored document format. Each record goes through Save; invalid
// records are skipped and reported.
func (s *Server) PostImport(w http.ResponseWriter, r *http.Request) {
	var trips []domain.TripRecord
	if !decodeJSON(w, r, &trips) {
		return
	}

	n, err := s.trips.Import(r.Context(), trips)
	resp := ImportResponse{Imported: n, Skipped: len(trips) - n}
	if err != nil {
		for _, e := range splitJoined(err) {
			resp.Errors = append(resp.Errors, e.Error())
		}
	}
	if n > 0 {
		s.refreshMap(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip builds the record to save for the region named by label.
func requestToTrip(label string, body TripRequest) domain.TripRecord {
	t := domain.TripRecord{
		Province:  label,
		Travelers: body.Travelers,
		Rating:    body.Rating,
		Notes:     body.Notes,
		Photos:    body.Photos,
	}
	if body.StartDate != nil {
		t.StartDate = body.StartDate.Format(time.DateOnly)
	}
	if body.EndDate != nil {
		t.EndDate = body.EndDate.Format(time.DateOnly)
	}
	return t
}

func (s *Server) tripToResponse(t domain.TripRecord) Trip {
	resp := Trip{TripRecord: t}
	if resp.Photos == nil {
		resp.Photos = []string{}
	}
	if s.regions != nil {
		if reg, ok := s.regions.ResolveRegion(t.Province); ok {
			resp.RegionID = reg.ID
			resp.DisplayName = reg.DisplayName
		}
	}
	return resp
}

// bindPath binds the chi URL parameter name into dst the way generated
// oapi-codegen servers do. On failure it writes a 422 and returns false.
func bindPath(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dst,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, requestBody(fmt.Sprintf("invalid %s parameter", name)))
		return false
	}
	return true
}

// splitJoined unpacks an errors.Join result into its parts.
func splitJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
