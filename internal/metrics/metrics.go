// Package metrics defines the Prometheus collectors for the trip store and
// the map binding layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for trip persistence, label resolution
// and map interaction.
type Metrics struct {
	TripsSaved        prometheus.Counter
	TripsDeleted      prometheus.Counter
	ResolutionMisses  *prometheus.CounterVec
	MapEvents         *prometheus.CounterVec
	GeometryTier      *prometheus.CounterVec
	MapInitialisation *prometheus.CounterVec
	HTTPRequests      *prometheus.HistogramVec
}

// New creates a Metrics instance with every collector registered on reg.
// Pass a fresh prometheus.NewRegistry() in tests to avoid duplicate
// registration panics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TripsSaved: f.NewCounter(prometheus.CounterOpts{
			Name: "logbook_trips_saved_total",
			Help: "Total number of successful trip saves (creates and replacements)",
		}),
		TripsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "logbook_trips_deleted_total",
			Help: "Total number of successful trip deletions",
		}),
		ResolutionMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_region_resolution_misses_total",
			Help: "Labels that resolved to no region, by caller",
		}, []string{"source"}),
		MapEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_map_events_total",
			Help: "Map interaction events by type and outcome",
		}, []string{"type", "outcome"}),
		GeometryTier: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_map_geometry_tier_total",
			Help: "Geometry loading tier accepted at map initialisation",
		}, []string{"tier"}),
		MapInitialisation: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logbook_map_initialisations_total",
			Help: "Map initialisations by resulting state",
		}, []string{"state"}),
		HTTPRequests: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logbook_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// TripSaved records a successful save.
func (m *Metrics) TripSaved() {
	m.TripsSaved.Inc()
}

// TripDeleted records a successful delete.
func (m *Metrics) TripDeleted() {
	m.TripsDeleted.Inc()
}

// ResolutionMiss records a label that named no region.
func (m *Metrics) ResolutionMiss(source string) {
	m.ResolutionMisses.WithLabelValues(source).Inc()
}

// MapEvent records one handled map interaction.
func (m *Metrics) MapEvent(eventType, outcome string) {
	m.MapEvents.WithLabelValues(eventType, outcome).Inc()
}

// GeometryLoaded records which geometry tier initialisation settled on.
func (m *Metrics) GeometryLoaded(tier string) {
	m.GeometryTier.WithLabelValues(tier).Inc()
}

// MapInitialised records the state a map initialisation ended in.
func (m *Metrics) MapInitialised(state string) {
	m.MapInitialisation.WithLabelValues(state).Inc()
}

// ObserveRequest records one served HTTP request. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
