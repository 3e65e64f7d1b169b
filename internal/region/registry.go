// Package region holds the closed set of top-level Chinese administrative
// regions and resolves free-form labels to their canonical identity.
//
// Labels arrive from two vocabularies: the short names map renderers draw
// ("内蒙古") and the full names users and stored records carry
// ("内蒙古自治区"). Resolution is exact-string only; the domain is closed,
// so suffix stripping and appending is enough to reconcile the two without
// risking collisions between regions.
package region

import (
	"strings"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
)

// Administrative suffix tokens in the order they are tried when stripping or
// appending. Longer tokens come first so "特别行政区" is never mistaken for a
// name ending in "区".
const (
	SuffixSAR              = "特别行政区"
	SuffixAutonomousRegion = "自治区"
	SuffixProvince         = "省"
	SuffixMunicipality     = "市"
)

var suffixes = []string{SuffixSAR, SuffixAutonomousRegion, SuffixProvince, SuffixMunicipality}

// Suffixes returns the suffix tokens in resolution priority order.
func Suffixes() []string {
	return append([]string(nil), suffixes...)
}

// Registry is an immutable index over a fixed list of regions.
// All methods are safe for concurrent use.
type Registry struct {
	regions []domain.Region
	byID    map[domain.RegionID]int
	byFull  map[string]domain.RegionID
	byShort map[string]domain.RegionID
}

// New builds a Registry over regions, preserving their order.
// Each region's ID is set to its DisplayName.
func New(regions []domain.Region) *Registry {
	r := &Registry{
		regions: make([]domain.Region, len(regions)),
		byID:    make(map[domain.RegionID]int, len(regions)),
		byFull:  make(map[string]domain.RegionID, len(regions)),
		byShort: make(map[string]domain.RegionID, 2*len(regions)),
	}
	for i, reg := range regions {
		reg.ID = domain.RegionID(reg.DisplayName)
		r.regions[i] = reg
		r.byID[reg.ID] = i
		r.byFull[reg.FullName] = reg.ID
		r.byShort[reg.DisplayName] = reg.ID
	}
	// The full name minus its own suffix ("广西壮族") is a second short form.
	// It never shadows a display name.
	for _, reg := range r.regions {
		if stem, ok := stripSuffix(reg.FullName); ok {
			if _, taken := r.byShort[stem]; !taken {
				r.byShort[stem] = reg.ID
			}
		}
	}
	return r
}

var defaultRegistry = New(chinaRegions)

// Default returns the process-wide registry of Chinese provincial-level regions.
func Default() *Registry {
	return defaultRegistry
}

// List returns every region in registry order. The slice is a fresh copy.
func (r *Registry) List() []domain.Region {
	return append([]domain.Region(nil), r.regions...)
}

// Len returns the number of regions in the registry.
func (r *Registry) Len() int {
	return len(r.regions)
}

// Lookup returns the region with the given canonical identity.
func (r *Registry) Lookup(id domain.RegionID) (domain.Region, bool) {
	i, ok := r.byID[id]
	if !ok {
		return domain.Region{}, false
	}
	return r.regions[i], true
}

// Resolve maps label to a canonical identity. The second result is false
// when the label names no region; callers treat that as "no data".
//
// Attempts, in order: exact full name, exact short name, label with one
// trailing suffix removed against the short names, label with each suffix
// appended against the full names.
func (r *Registry) Resolve(label string) (domain.RegionID, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	if id, ok := r.byFull[label]; ok {
		return id, true
	}
	if id, ok := r.byShort[label]; ok {
		return id, true
	}
	for _, s := range suffixes {
		stem, found := strings.CutSuffix(label, s)
		if !found || stem == "" {
			continue
		}
		if id, ok := r.byShort[stem]; ok {
			return id, true
		}
	}
	for _, s := range suffixes {
		if id, ok := r.byFull[label+s]; ok {
			return id, true
		}
	}
	return "", false
}

// ResolveRegion is Resolve followed by Lookup.
func (r *Registry) ResolveRegion(label string) (domain.Region, bool) {
	id, ok := r.Resolve(label)
	if !ok {
		return domain.Region{}, false
	}
	return r.Lookup(id)
}

// IsValid reports whether label is exactly the full name of a region.
// Write paths use it; read paths use Resolve, which also accepts short names.
func (r *Registry) IsValid(label string) bool {
	_, ok := r.byFull[label]
	return ok
}

func stripSuffix(name string) (string, bool) {
	for _, s := range suffixes {
		if stem, ok := strings.CutSuffix(name, s); ok && stem != "" {
			return stem, true
		}
	}
	return name, false
}
