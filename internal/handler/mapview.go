package handler

import (
	"net/http"

	"github.com/pkordes/growth-logbook/backend/internal/mapview"
)

type RefreshResponse struct {
	Refreshed bool          `json:"refreshed"`
	State     mapview.State `json:"state"`
}

// GetMap handles GET /map: the binding state, geometry tier and the last
// option pushed to the renderer, which a browser chart can apply directly.
func (s *Server) GetMap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.mapv.Snapshot())
}

// GetClassification handles GET /map/classification.
func (s *Server) GetClassification(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mapv.ClassificationData(r.Context()))
}

// GetTooltip handles GET /map/tooltip/{label}.
func (s *Server) GetTooltip(w http.ResponseWriter, r *http.Request) {
	var label string
	if !bindPath(w, r, "label", &label) {
		return
	}
	writeJSON(w, http.StatusOK, s.mapv.Tooltip(r.Context(), label))
}

// PostMapEvent handles POST /map/events. The browser forwards renderer
// interaction events here; the outcome says what the client should do next.
func (s *Server) PostMapEvent(w http.ResponseWriter, r *http.Request) {
	var ev mapview.Event
	if !decodeJSON(w, r, &ev) {
		return
	}
	switch ev.Type {
	case mapview.EventClick, mapview.EventMouseOver, mapview.EventMouseOut:
	default:
		writeError(w, http.StatusUnprocessableEntity, requestBody("type must be click, mouseover or mouseout"))
		return
	}
	writeJSON(w, http.StatusOK, s.mapv.HandleEvent(r.Context(), ev))
}

// PostMapRefresh handles POST /map/refresh.
func (s *Server) PostMapRefresh(w http.ResponseWriter, r *http.Request) {
	ok := s.mapv.Refresh(r.Context())
	writeJSON(w, http.StatusOK, RefreshResponse{Refreshed: ok, State: s.mapv.Snapshot().State})
}

// ListSelections handles GET /map/selections: the most recent clicks on
// regions without a trip, oldest first. The new-trip form polls it to
// prefill the clicked region.
func (s *Server) ListSelections(w http.ResponseWriter, _ *http.Request) {
	sel := s.selections.Recent()
	if sel == nil {
		sel = []mapview.RegionSelected{}
	}
	writeJSON(w, http.StatusOK, sel)
}
