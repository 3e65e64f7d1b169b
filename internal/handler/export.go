package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
	"github.com/pkordes/growth-logbook/backend/internal/service"
)

// ExportRow is the JSON shape of one export row.
type ExportRow struct {
	RegionID    domain.RegionID `json:"regionId,omitempty"`
	Province    string          `json:"province"`
	DisplayName string          `json:"displayName,omitempty"`
	StartDate   string          `json:"startDate,omitempty"`
	EndDate     string          `json:"endDate,omitempty"`
	Travelers   string          `json:"travelers,omitempty"`
	Rating      int             `json:"rating"`
	Notes       string          `json:"notes,omitempty"`
	PhotoCount  int             `json:"photoCount"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// GetExport handles GET /export.
// It returns one row per trip joined with its region.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		writeError(w, http.StatusUnprocessableEntity, requestBody("format must be csv or json"))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "export not found")
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]ExportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domainRowToJSONRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as CSV with a header row.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	service.WriteCSV(&buf, rows)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// domainRowToJSONRow maps a domain.ExportRow to its JSON shape.
// A zero UpdatedAt (legacy records) is omitted.
func domainRowToJSONRow(r domain.ExportRow) ExportRow {
	row := ExportRow{
		RegionID:    r.RegionID,
		Province:    r.Province,
		DisplayName: r.DisplayName,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Travelers:   r.Travelers,
		Rating:      r.Rating,
		Notes:       r.Notes,
		PhotoCount:  r.PhotoCount,
	}
	if !r.UpdatedAt.IsZero() {
		u := r.UpdatedAt.UTC()
		row.UpdatedAt = &u
	}
	return row
}
