package repo

import (
	"context"
	"fmt"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
)

// TripsKey is the fixed key under which the whole trip collection is stored.
const TripsKey = "personal_growth_trips"

// TripRepo defines the persistence operations for the trip collection.
// The service layer depends on this interface, not the concrete KV-backed
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// List returns every stored trip in insertion order.
	// A store that has never been written yields an empty slice.
	List(ctx context.Context) ([]domain.TripRecord, error)

	// ReplaceAll overwrites the stored collection with trips.
	// There are no partial writes: the whole collection is persisted.
	ReplaceAll(ctx context.Context, trips []domain.TripRecord) error
}

// kvTripRepo stores the trip collection as one JSON array in a KVStore.
type kvTripRepo struct {
	kv KVStore
}

// NewTripRepo constructs a TripRepo backed by the provided key-value store.
func NewTripRepo(kv KVStore) TripRepo {
	return &kvTripRepo{kv: kv}
}

// List decodes the collection stored under TripsKey.
func (r *kvTripRepo) List(ctx context.Context) ([]domain.TripRecord, error) {
	var trips []domain.TripRecord
	found, err := r.kv.Get(ctx, TripsKey, &trips)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w: %w", domain.ErrPersistence, err)
	}
	if !found || trips == nil {
		return []domain.TripRecord{}, nil
	}
	return trips, nil
}

// ReplaceAll writes trips under TripsKey.
func (r *kvTripRepo) ReplaceAll(ctx context.Context, trips []domain.TripRecord) error {
	if trips == nil {
		trips = []domain.TripRecord{}
	}
	if err := r.kv.Set(ctx, TripsKey, trips); err != nil {
		return fmt.Errorf("repo.TripRepo.ReplaceAll: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}
