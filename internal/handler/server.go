// Package handler implements the HTTP handlers for the growth logbook API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, mapview.go, etc.) but all share the same Server
// struct so they can access its dependencies. Routes wires them onto chi.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
	"github.com/pkordes/growth-logbook/backend/internal/mapview"
	"github.com/pkordes/growth-logbook/backend/spec"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching storage or the service layer.
type TripServicer interface {
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.TripRecord, int, error)
	GetByRegion(ctx context.Context, label string) (domain.TripRecord, error)
	Save(ctx context.Context, trip domain.TripRecord) (domain.TripRecord, error)
	Delete(ctx context.Context, label string) error
	VisitedRegions(ctx context.Context) ([]domain.RegionID, error)
	AddPhoto(ctx context.Context, label, ref string) (domain.TripRecord, error)
	RemovePhoto(ctx context.Context, label string, index int) (domain.TripRecord, error)
	Import(ctx context.Context, trips []domain.TripRecord) (int, error)
}

// RegionLister is the canonical region registry. *region.Registry satisfies it.
type RegionLister interface {
	List() []domain.Region
	ResolveRegion(label string) (domain.Region, bool)
	IsValid(label string) bool
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// MapBinder is the map binding layer. *mapview.Binding satisfies it.
type MapBinder interface {
	Snapshot() mapview.Snapshot
	ClassificationData(ctx context.Context) []mapview.Classification
	Tooltip(ctx context.Context, label string) mapview.Tooltip
	HandleEvent(ctx context.Context, ev mapview.Event) mapview.Outcome
	Refresh(ctx context.Context) bool
}

// SelectionLister remembers recent clicks on regions without a trip.
// *mapview.Dispatcher satisfies it.
type SelectionLister interface {
	Recent() []mapview.RegionSelected
}

// Server holds the dependencies of every handler.
type Server struct {
	trips      TripServicer
	regions    RegionLister
	export     ExportServicer
	mapv       MapBinder
	selections SelectionLister
	log        *slog.Logger
	metrics    http.Handler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for unexpected handler errors.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) { s.metrics = h }
}

// WithSelections serves l at GET /map/selections.
func WithSelections(l SelectionLister) ServerOption {
	return func(s *Server) { s.selections = l }
}

// NewServer constructs the Server with all its dependencies.
// Any of them may be nil in tests that exercise a single route group.
func NewServer(trips TripServicer, regions RegionLister, export ExportServicer, mapv MapBinder, opts ...ServerOption) *Server {
	s := &Server{
		trips:   trips,
		regions: regions,
		export:  export,
		mapv:    mapv,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes returns the API router. Middleware is the caller's concern.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Get("/regions", s.ListRegions)
	r.Get("/regions/{label}", s.GetRegion)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Get("/{region}", s.GetTrip)
		r.Put("/{region}", s.SaveTrip)
		r.Delete("/{region}", s.DeleteTrip)
		r.Post("/{region}/photos", s.AddPhoto)
		r.Delete("/{region}/photos/{index}", s.RemovePhoto)
	})
	r.Get("/visited", s.ListVisited)

	r.Route("/map", func(r chi.Router) {
		r.Get("/", s.GetMap)
		r.Get("/classification", s.GetClassification)
		r.Get("/tooltip/{label}", s.GetTooltip)
		r.Post("/events", s.PostMapEvent)
		r.Post("/refresh", s.PostMapRefresh)
		if s.selections != nil {
			r.Get("/selections", s.ListSelections)
		}
	})

	r.Get("/export", s.GetExport)
	r.Post("/import", s.PostImport)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, notFoundBody("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: ErrorDetail{Code: "method_not_allowed", Message: "method not allowed"}})
	})
	return r
}

// serveOpenAPI handles GET /openapi.yaml.
func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}

// refreshMap re-pushes map classification after a trip mutation.
func (s *Server) refreshMap(ctx context.Context) {
	if s.mapv == nil {
		return
	}
	if !s.mapv.Refresh(ctx) {
		s.log.DebugContext(ctx, "map not refreshed", "state", string(s.mapv.Snapshot().State))
	}
}
