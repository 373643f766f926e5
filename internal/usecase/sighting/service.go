package sighting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/ufotracker/internal/domain"
	dombatch "github.com/kailas-cloud/ufotracker/internal/domain/batch"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/request"
	domsighting "github.com/kailas-cloud/ufotracker/internal/domain/sighting"
)

// Page size limits of List.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// DefaultMaxImportSize is the maximum number of records per Import call.
const DefaultMaxImportSize = 500

// ReportZone is the zone assigned to reports submitted without a timestamp.
const ReportZone = "America/Sao_Paulo"

// Service handles sighting CRUD and keeps the search index in step with the catalog.
type Service struct {
	catalog Catalog
	index   Indexer
	now     func() time.Time
	newID   func() string
	zone    *time.Location

	maxImportSize int
}

// New creates a sighting service.
func New(catalog Catalog, index Indexer) *Service {
	zone, err := time.LoadLocation(ReportZone)
	if err != nil {
		// No tzdata on the host; Brazil has not observed DST since 2019.
		zone = time.FixedZone("BRT", -3*3600)
	}
	return &Service{
		catalog: catalog,
		index:   index,
		now:     time.Now,
		newID:   uuid.NewString,
		zone:    zone,

		maxImportSize: DefaultMaxImportSize,
	}
}

// WithClock replaces the clock used for default timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDGenerator replaces the record ID generator.
func (s *Service) WithIDGenerator(newID func() string) *Service {
	s.newID = newID
	return s
}

// WithMaxImportSize configures the maximum Import batch size.
func (s *Service) WithMaxImportSize(n int) *Service {
	if n > 0 {
		s.maxImportSize = n
	}
	return s
}

// Create stores a new record and indexes it. A zero OccurredAt means now.
func (s *Service) Create(ctx context.Context, rec domsighting.Record) (domsighting.Record, error) {
	rec.ID = s.newID()
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = s.now().In(s.zone)
	}
	if err := rec.Validate(); err != nil {
		return domsighting.Record{}, fmt.Errorf("%w: %w", domain.ErrInvalidSighting, err)
	}

	if err := s.catalog.Create(ctx, rec); err != nil {
		return domsighting.Record{}, fmt.Errorf("create sighting: %w", err)
	}
	if err := s.index.Upsert(ctx, rec.ToDocument()); err != nil {
		return domsighting.Record{}, fmt.Errorf("index sighting %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Get returns a record by ID.
func (s *Service) Get(ctx context.Context, id string) (domsighting.Record, error) {
	rec, err := s.catalog.Get(ctx, id)
	if err != nil {
		return domsighting.Record{}, fmt.Errorf("get sighting: %w", err)
	}
	return rec, nil
}

// Update applies the non-nil patch fields, then re-indexes the record.
func (s *Service) Update(ctx context.Context, id string, p domsighting.Patch) (domsighting.Record, error) {
	cur, err := s.catalog.Get(ctx, id)
	if err != nil {
		return domsighting.Record{}, fmt.Errorf("get sighting: %w", err)
	}
	if p.IsEmpty() {
		return cur, nil
	}

	rec := p.Apply(cur)
	if err := rec.Validate(); err != nil {
		return domsighting.Record{}, fmt.Errorf("%w: %w", domain.ErrInvalidSighting, err)
	}
	if err := s.catalog.Update(ctx, rec); err != nil {
		return domsighting.Record{}, fmt.Errorf("update sighting: %w", err)
	}
	if err := s.index.Upsert(ctx, rec.ToDocument()); err != nil {
		return domsighting.Record{}, fmt.Errorf("index sighting %s: %w", rec.ID, err)
	}
	return rec, nil
}

// List returns a page of records, most recent first.
// page is clamped to >= 0 and size to [1, MaxPageSize].
func (s *Service) List(ctx context.Context, page, size int) ([]domsighting.Record, error) {
	size = min(max(1, size), MaxPageSize)
	page = request.ClampPage(page, size)

	recs, err := s.catalog.List(ctx, page*size, size)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	return recs, nil
}

// Import stores records and indexes them in one pipelined write.
// Records without an ID get a fresh one. Results follow input order.
func (s *Service) Import(ctx context.Context, recs []domsighting.Record) []dombatch.Result {
	results := make([]dombatch.Result, len(recs))

	if len(recs) > s.maxImportSize {
		err := fmt.Errorf("import size exceeds %d: %w", s.maxImportSize, domain.ErrInvalidSighting)
		for i := range recs {
			results[i] = dombatch.NewError(i+1, recs[i].ID, err)
		}
		return results
	}

	docs := make([]domsighting.Document, 0, len(recs))
	stored := make([]int, 0, len(recs))

	for i := range recs {
		rec := recs[i]
		if rec.ID == "" {
			rec.ID = s.newID()
		}
		if err := rec.Validate(); err != nil {
			results[i] = dombatch.NewError(i+1, rec.ID, fmt.Errorf("%w: %w", domain.ErrInvalidSighting, err))
			continue
		}
		if err := s.catalog.Create(ctx, rec); err != nil {
			results[i] = dombatch.NewError(i+1, rec.ID, fmt.Errorf("create: %w", err))
			continue
		}
		docs = append(docs, rec.ToDocument())
		stored = append(stored, i)
		results[i] = dombatch.NewOK(i+1, rec.ID)
	}

	if len(docs) == 0 {
		return results
	}

	if err := s.index.UpsertMany(ctx, docs); err != nil {
		for _, i := range stored {
			results[i] = dombatch.NewError(i+1, results[i].ID(), fmt.Errorf("index: %w", err))
		}
	}
	return results
}

// Reindex copies every catalog record into the search index, pageSize records at a time.
// Returns the number of records indexed.
func (s *Service) Reindex(ctx context.Context, pageSize int) (int, error) {
	pageSize = min(max(1, pageSize), s.maxImportSize)

	total := 0
	for offset := 0; ; offset += pageSize {
		recs, err := s.catalog.List(ctx, offset, pageSize)
		if err != nil {
			return total, fmt.Errorf("list sightings: %w", err)
		}
		if len(recs) == 0 {
			return total, nil
		}

		docs := make([]domsighting.Document, len(recs))
		for i := range recs {
			docs[i] = recs[i].ToDocument()
		}
		if err := s.index.UpsertMany(ctx, docs); err != nil {
			return total, fmt.Errorf("index page at %d: %w", offset, err)
		}
		total += len(recs)

		if len(recs) < pageSize {
			return total, nil
		}
	}
}
