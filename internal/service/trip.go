// Package service contains the business logic for the growth logbook.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No storage code lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
	"github.com/pkordes/growth-logbook/backend/internal/repo"
)

// Regions resolves free-form labels to canonical regions.
// *region.Registry satisfies it.
type Regions interface {
	Resolve(label string) (domain.RegionID, bool)
	ResolveRegion(label string) (domain.Region, bool)
}

// Recorder receives counters for trip store activity.
// *metrics.Metrics satisfies it; nil means no metrics.
type Recorder interface {
	TripSaved()
	TripDeleted()
	ResolutionMiss(source string)
}

// TripService is the trip record store: CRUD over trips keyed by canonical
// region identity, plus the visited-set projection the map consumes.
//
// Every mutation rewrites the whole collection through the repo before
// returning, so a subsequent List observes it. Operations are serialised
// by a mutex because HTTP handlers call the service concurrently.
type TripService struct {
	repo    repo.TripRepo
	regions Regions
	log     *slog.Logger
	metrics Recorder
	now     func() time.Time

	mu sync.Mutex
}

// TripOption configures a TripService.
type TripOption func(*TripService)

// WithLogger sets the logger used for validation and persistence failures.
func WithLogger(l *slog.Logger) TripOption {
	return func(s *TripService) { s.log = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(m Recorder) TripOption {
	return func(s *TripService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the clock used to stamp UpdatedAt.
func WithClock(now func() time.Time) TripOption {
	return func(s *TripService) { s.now = now }
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo, regions Regions, opts ...TripOption) *TripService {
	s := &TripService{
		repo:    r,
		regions: regions,
		log:     slog.Default(),
		metrics: nopRecorder{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all trips in storage insertion order.
func (s *TripService) List(ctx context.Context) ([]domain.TripRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.repo.List(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "list trips failed", "error", err)
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	return cloneAll(trips), nil
}

// ListPaged returns one page of trips in insertion order and the total count.
func (s *TripService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.TripRecord, int, error) {
	trips, err := s.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	start, end := p.Bounds(len(trips))
	return trips[start:end], len(trips), nil
}

// GetByRegion returns the trip for the region label names.
// A label that resolves to no region is reported exactly like a region
// without a trip: domain.ErrNotFound.
func (s *TripService) GetByRegion(ctx context.Context, label string) (domain.TripRecord, error) {
	id, ok := s.regions.Resolve(label)
	if !ok {
		s.metrics.ResolutionMiss("get")
		return domain.TripRecord{}, fmt.Errorf("service.TripService.GetByRegion: %w", domain.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.repo.List(ctx)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("service.TripService.GetByRegion: %w", err)
	}
	i := s.indexOf(trips, id)
	if i < 0 {
		return domain.TripRecord{}, fmt.Errorf("service.TripService.GetByRegion: %w", domain.ErrNotFound)
	}
	return trips[i].Clone(), nil
}

// Save validates trip and stores it as the one record for its region.
// An existing record for the same region is replaced wholesale: fields the
// caller leaves empty are empty afterwards. Province is normalised to the
// region's full name and UpdatedAt is stamped with the current time.
func (s *TripService) Save(ctx context.Context, trip domain.TripRecord) (domain.TripRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.saveLocked(ctx, trip)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("service.TripService.Save: %w", err)
	}
	return saved, nil
}

// Delete removes the trip for the region label names.
func (s *TripService) Delete(ctx context.Context, label string) error {
	id, ok := s.regions.Resolve(label)
	if !ok {
		s.metrics.ResolutionMiss("delete")
		return fmt.Errorf("service.TripService.Delete: %w", domain.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}

	kept := make([]domain.TripRecord, 0, len(trips))
	for _, t := range trips {
		if tid, ok := s.regions.Resolve(t.Province); ok && tid == id {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == len(trips) {
		s.log.WarnContext(ctx, "delete trip: no trip for region", "region", id)
		return fmt.Errorf("service.TripService.Delete: %w", domain.ErrNotFound)
	}

	if err := s.repo.ReplaceAll(ctx, kept); err != nil {
		s.log.ErrorContext(ctx, "delete trip: persist failed", "region", id, "error", err)
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.metrics.TripDeleted()
	return nil
}

// VisitedRegions returns the canonical identities that have a trip, in
// storage order without duplicates. Stored labels that no longer resolve
// are skipped.
func (s *TripService) VisitedRegions(ctx context.Context) ([]domain.RegionID, error) {
	trips, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.RegionID]bool, len(trips))
	visited := make([]domain.RegionID, 0, len(trips))
	for _, t := range trips {
		id, ok := s.regions.Resolve(t.Province)
		if !ok {
			s.log.DebugContext(ctx, "visited regions: unresolvable stored province", "province", t.Province)
			continue
		}
		if !seen[id] {
			seen[id] = true
			visited = append(visited, id)
		}
	}
	return visited, nil
}

// AddPhoto appends ref to the photo list of the region's trip and saves it.
func (s *TripService) AddPhoto(ctx context.Context, label, ref string) (domain.TripRecord, error) {
	if strings.TrimSpace(ref) == "" {
		return domain.TripRecord{}, fmt.Errorf("service.TripService.AddPhoto: %w: photo reference is required", domain.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trip, err := s.findLocked(ctx, label)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("service.TripService.AddPhoto: %w", err)
	}
	trip.Photos = append(trip.Photos, ref)

	saved, err := s.saveLocked(ctx, trip)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("service.TripService.AddPhoto: %w", err)
	}
	return saved, nil
}

// RemovePhoto deletes the photo at index from the region's trip and saves it.
// An index outside the list fails with domain.ErrValidation and leaves the
// stored list untouched.
func (s *TripService) RemovePhoto(ctx context.Context, label string, index int) (domain.TripRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip, err := s.findLocked(ctx, label)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("service.TripService.RemovePhoto: %w", err)
	}
	if index < 0 || index >= len(trip.Photos) {
		s.log.WarnContext(ctx, "remove photo: index out of range", "province", trip.Province, "index", index, "photos", len(trip.Photos))
		return domain.TripRecord{}, fmt.Errorf("service.TripService.RemovePhoto: %w: photo index %d out of range", domain.ErrValidation, index)
	}
	trip.Photos = append(trip.Photos[:index], trip.Photos[index+1:]...)

	saved, err := s.saveLocked(ctx, trip)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("service.TripService.RemovePhoto: %w", err)
	}
	return saved, nil
}

// Import saves every trip through Save, in order, and returns how many were
// stored. Invalid records are skipped; their errors are joined in the result.
func (s *TripService) Import(ctx context.Context, trips []domain.TripRecord) (int, error) {
	var (
		saved int
		errs  []error
	)
	for i, t := range trips {
		if _, err := s.Save(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("record %d (%q): %w", i, t.Province, err))
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// SeedDemo stores a few demonstration trips when the collection is empty, so
// a fresh install shows a coloured map. It returns how many trips were added.
// The emptiness check and the writes happen under one lock, so a trip saved
// concurrently either lands before the check (no seeding) or after the seed.
func (s *TripService) SeedDemo(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.repo.List(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "seed demo trips: load failed", "error", err)
		return 0, fmt.Errorf("service.TripService.SeedDemo: %w", err)
	}
	if len(trips) > 0 {
		return 0, nil
	}

	s.log.InfoContext(ctx, "no trips recorded, seeding demo trips")
	var (
		seeded int
		errs   []error
	)
	for _, t := range demoTrips() {
		if _, err := s.saveLocked(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("demo trip %q: %w", t.Province, err))
			continue
		}
		seeded++
	}
	if err := errors.Join(errs...); err != nil {
		return seeded, fmt.Errorf("service.TripService.SeedDemo: %w", err)
	}
	return seeded, nil
}

func demoTrips() []domain.TripRecord {
	return []domain.TripRecord{
		{Province: "北京市", StartDate: "2023-05-01", EndDate: "2023-05-07", Rating: 5, Notes: "北京之旅很愉快"},
		{Province: "上海市", StartDate: "2023-06-10", EndDate: "2023-06-15", Rating: 4, Notes: "上海很现代化"},
		{Province: "广东省", StartDate: "2023-07-20", EndDate: "2023-07-25", Rating: 5, Notes: "广东美食很棒"},
	}
}

// saveLocked validates trip and writes it into the collection.
// Callers must hold s.mu.
func (s *TripService) saveLocked(ctx context.Context, trip domain.TripRecord) (domain.TripRecord, error) {
	province := strings.TrimSpace(trip.Province)
	if province == "" {
		s.log.WarnContext(ctx, "save trip: province is required")
		return domain.TripRecord{}, fmt.Errorf("%w: province is required", domain.ErrValidation)
	}
	reg, ok := s.regions.ResolveRegion(province)
	if !ok {
		s.metrics.ResolutionMiss("save")
		s.log.WarnContext(ctx, "save trip: unknown region", "province", province)
		return domain.TripRecord{}, fmt.Errorf("%w: unknown region %q", domain.ErrValidation, province)
	}
	if err := validateTrip(trip); err != nil {
		s.log.WarnContext(ctx, "save trip: invalid record", "province", province, "error", err)
		return domain.TripRecord{}, err
	}

	record := trip.Clone()
	record.Province = reg.FullName
	if record.Photos == nil {
		record.Photos = []string{}
	}
	record.UpdatedAt = s.now().UTC()

	trips, err := s.repo.List(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "save trip: load failed", "province", reg.FullName, "error", err)
		return domain.TripRecord{}, err
	}

	if i := s.indexOf(trips, reg.ID); i >= 0 {
		trips[i] = record
	} else {
		trips = append(trips, record)
	}

	if err := s.repo.ReplaceAll(ctx, trips); err != nil {
		s.log.ErrorContext(ctx, "save trip: persist failed", "province", reg.FullName, "error", err)
		return domain.TripRecord{}, err
	}
	s.metrics.TripSaved()
	return record.Clone(), nil
}

// findLocked returns a copy of the trip for label. Callers must hold s.mu.
func (s *TripService) findLocked(ctx context.Context, label string) (domain.TripRecord, error) {
	id, ok := s.regions.Resolve(label)
	if !ok {
		s.metrics.ResolutionMiss("photo")
		return domain.TripRecord{}, domain.ErrNotFound
	}
	trips, err := s.repo.List(ctx)
	if err != nil {
		return domain.TripRecord{}, err
	}
	i := s.indexOf(trips, id)
	if i < 0 {
		return domain.TripRecord{}, domain.ErrNotFound
	}
	return trips[i].Clone(), nil
}

// indexOf returns the position of the first trip whose stored province
// resolves to id, or -1.
func (s *TripService) indexOf(trips []domain.TripRecord, id domain.RegionID) int {
	for i, t := range trips {
		if tid, ok := s.regions.Resolve(t.Province); ok && tid == id {
			return i
		}
	}
	return -1
}

// validateTrip checks the rating range and date order.
// Dates are free text; the order is only checked when both parse as days.
func validateTrip(t domain.TripRecord) error {
	if t.Rating < 0 || t.Rating > domain.MaxRating {
		return fmt.Errorf("%w: rating must be between 0 and %d", domain.ErrValidation, domain.MaxRating)
	}
	if t.StartDate != "" && t.EndDate != "" {
		start, errS := time.Parse(time.DateOnly, t.StartDate)
		end, errE := time.Parse(time.DateOnly, t.EndDate)
		if errS == nil && errE == nil && end.Before(start) {
			return fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
		}
	}
	return nil
}

func cloneAll(trips []domain.TripRecord) []domain.TripRecord {
	out := make([]domain.TripRecord, len(trips))
	for i, t := range trips {
		out[i] = t.Clone()
	}
	return out
}

type nopRecorder struct{}

func (nopRecorder) TripSaved()            {}
func (nopRecorder) TripDeleted()          {}
func (nopRecorder) ResolutionMiss(string) {}
