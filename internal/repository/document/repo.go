package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/domain"
	"github.com/kailas-cloud/ufotracker/internal/domain/sighting"
	"github.com/kailas-cloud/ufotracker/internal/repository"
)

// store is the consumer interface for indexed documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo writes sighting documents into the search index.
type Repo struct {
	store store
	index string
}

// New creates a document repository over the named index.
func New(s store, index string) *Repo {
	if index == "" {
		index = domain.IndexName
	}
	return &Repo{store: s, index: index}
}

// Index returns the index name this repository writes to.
func (r *Repo) Index() string { return r.index }

// EnsureIndex creates the index unless it exists. Returns true if created.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	def, err := IndexDefinition(r.index)
	if err != nil {
		return false, fmt.Errorf("build index: %w", err)
	}

	exists, err := r.store.IndexExists(ctx, r.index)
	if err != nil {
		return false, repository.BackendError("index exists", err)
	}
	if exists {
		return false, nil
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Lost a race with another replica.
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, repository.BackendError("create index", err)
	}
	return true, nil
}

// DropIndex removes the index; deleteDocs also removes every indexed hash.
// A missing index is not an error.
func (r *Repo) DropIndex(ctx context.Context, deleteDocs bool) error {
	if err := r.store.DropIndex(ctx, r.index, deleteDocs); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil
		}
		return repository.BackendError("drop index", err)
	}
	return nil
}

// Upsert writes one document over its previous version.
// Fields absent from the new version keep their stored value; record patches never clear reliability.
func (r *Repo) Upsert(ctx context.Context, d sighting.Document) error {
	if d.ID() == "" {
		return fmt.Errorf("%w: document without id", domain.ErrInvalidSighting)
	}
	if err := r.store.HSet(ctx, domain.SightingKey(d.ID()), EncodeFields(d)); err != nil {
		return repository.BackendError("upsert "+d.ID(), err)
	}
	return nil
}

// UpsertMany writes documents in one pipelined round trip.
func (r *Repo) UpsertMany(ctx context.Context, docs []sighting.Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(docs))
	for i, d := range docs {
		if d.ID() == "" {
			return fmt.Errorf("%w: document %d without id", domain.ErrInvalidSighting, i)
		}
		items[i] = db.HashSetItem{Key: domain.SightingKey(d.ID()), Fields: EncodeFields(d)}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return repository.BackendError(fmt.Sprintf("upsert %d documents", len(docs)), err)
	}
	return nil
}

// Get reads one indexed document.
func (r *Repo) Get(ctx context.Context, id string) (sighting.Document, error) {
	key := domain.SightingKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return sighting.Document{}, domain.ErrNotFound
		}
		return sighting.Document{}, repository.BackendError("get "+id, err)
	}
	if len(m) == 0 {
		return sighting.Document{}, domain.ErrNotFound
	}
	return DecodeFields(key, m)
}
