package ufotracker

import (
	"context"
	"time"

	domsighting "github.com/kailas-cloud/ufotracker/internal/domain/sighting"
)

// SightingService manages catalog records. Every write is indexed before it returns.
type SightingService struct {
	svc sightingUseCase
	obs *observer
}

// Create stores a new sighting and returns it with its generated ID.
// A zero OccurredAt is set to the current time.
func (s *SightingService) Create(ctx context.Context, in Sighting) (_ Sighting, err error) {
	start := time.Now()
	defer func() { s.obs.observe("sighting_create", start, err) }()

	if s.svc == nil {
		return Sighting{}, ErrNoCatalog
	}
	rec, err := s.svc.Create(ctx, recordFromSighting(in))
	if err != nil {
		return Sighting{}, err
	}
	return sightingFromRecord(rec), nil
}

// Get returns a sighting by ID.
func (s *SightingService) Get(ctx context.Context, id string) (_ Sighting, err error) {
	start := time.Now()
	defer func() { s.obs.observe("sighting_get", start, err) }()

	if s.svc == nil {
		return Sighting{}, ErrNoCatalog
	}
	rec, err := s.svc.Get(ctx, id)
	if err != nil {
		return Sighting{}, err
	}
	return sightingFromRecord(rec), nil
}

// Update applies the non-nil fields of u.
func (s *SightingService) Update(ctx context.Context, id string, u SightingUpdate) (_ Sighting, err error) {
	start := time.Now()
	defer func() { s.obs.observe("sighting_update", start, err) }()

	if s.svc == nil {
		return Sighting{}, ErrNoCatalog
	}
	rec, err := s.svc.Update(ctx, id, u.toPatch())
	if err != nil {
		return Sighting{}, err
	}
	return sightingFromRecord(rec), nil
}

// List returns a page of sightings, most recent first.
func (s *SightingService) List(ctx context.Context, page, size int) (_ []Sighting, err error) {
	start := time.Now()
	defer func() { s.obs.observe("sighting_list", start, err) }()

	if s.svc == nil {
		return nil, ErrNoCatalog
	}
	recs, err := s.svc.List(ctx, page, size)
	if err != nil {
		return nil, err
	}
	out := make([]Sighting, len(recs))
	for i := range recs {
		out[i] = sightingFromRecord(recs[i])
	}
	return out, nil
}

// Import stores and indexes many sightings in one call. Sightings without an ID get one.
// The returned error is non-nil only when the client has no catalog; per-record
// failures are reported in the results.
func (s *SightingService) Import(ctx context.Context, in []Sighting) (_ []ImportResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("sighting_import", start, err) }()

	if s.svc == nil {
		return nil, ErrNoCatalog
	}
	recs := make([]domsighting.Record, len(in))
	for i := range in {
		recs[i] = recordFromSighting(in[i])
	}
	return importResults(s.svc.Import(ctx, recs)), nil
}
