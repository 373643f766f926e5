package sighting

import (
	"context"

	domsighting "github.com/kailas-cloud/ufotracker/internal/domain/sighting"
)

// Catalog persists canonical records.
type Catalog interface {
	Create(ctx context.Context, rec domsighting.Record) error
	Update(ctx context.Context, rec domsighting.Record) error
	Get(ctx context.Context, id string) (domsighting.Record, error)
	List(ctx context.Context, offset, limit int) ([]domsighting.Record, error)
}

// Indexer writes search documents.
type Indexer interface {
	Upsert(ctx context.Context, d domsighting.Document) error
	UpsertMany(ctx context.Context, docs []domsighting.Document) error
}
