package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
)

// TripLister is the read side of TripService the export depends on.
type TripLister interface {
	List(ctx context.Context) ([]domain.TripRecord, error)
}

// ExportService assembles a flat export of every trip joined with its region.
type ExportService struct {
	trips   TripLister
	regions Regions
}

// NewExportService constructs an ExportService reading from trips.
func NewExportService(trips TripLister, regions Regions) *ExportService {
	return &ExportService{trips: trips, regions: regions}
}

// Export returns one ExportRow per trip in storage order.
// Trips whose province no longer resolves are still exported, with an
// empty RegionID and DisplayName.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(trips))
	for _, t := range trips {
		row := domain.ExportRow{
			Province:   t.Province,
			StartDate:  t.StartDate,
			EndDate:    t.EndDate,
			Travelers:  t.Travelers,
			Rating:     t.Rating,
			Notes:      t.Notes,
			PhotoCount: len(t.Photos),
			UpdatedAt:  t.UpdatedAt,
		}
		if reg, ok := s.regions.ResolveRegion(t.Province); ok {
			row.RegionID = reg.ID
			row.DisplayName = reg.DisplayName
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CSVHeaders is the header row of a CSV export.
var CSVHeaders = []string{
	"region_id", "province", "display_name", "start_date", "end_date",
	"travelers", "rating", "notes", "photo_count", "updated_at",
}

// WriteCSV encodes rows as CSV with a header row.
func WriteCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeaders); err != nil {
		return fmt.Errorf("service.WriteCSV: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("service.WriteCSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvRecord flattens r. A zero UpdatedAt is encoded as an empty string.
func csvRecord(r domain.ExportRow) []string {
	updated := ""
	if !r.UpdatedAt.IsZero() {
		updated = r.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		string(r.RegionID),
		r.Province,
		r.DisplayName,
		r.StartDate,
		r.EndDate,
		r.Travelers,
		strconv.Itoa(r.Rating),
		r.Notes,
		strconv.Itoa(r.PhotoCount),
		updated,
	}
}
