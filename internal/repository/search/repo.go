package search

import (
	"context"

	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/domain"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/request"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/result"
	"github.com/kailas-cloud/ufotracker/internal/domain/sighting"
	"github.com/kailas-cloud/ufotracker/internal/repository"
	"github.com/kailas-cloud/ufotracker/internal/repository/document"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Searcher.
type Repo struct {
	store store
	index string
}

// New creates a search repository over the named index.
func New(s store, index string) *Repo {
	if index == "" {
		index = domain.IndexName
	}
	return &Repo{store: s, index: index}
}

// Search runs one search request and decodes its hits.
// A text search without any searchable term matches nothing and skips the backend.
func (r *Repo) Search(ctx context.Context, req request.Request) (result.Result, error) {
	if ts, ok := req.(request.TextSearch); ok && len(db.Tokenize(ts.Query())) == 0 {
		return result.Empty(), nil
	}

	q, err := BuildQuery(r.index, req)
	if err != nil {
		return result.Result{}, err
	}

	sr, err := r.store.Search(ctx, q)
	if err != nil {
		return result.Result{}, repository.BackendError("search "+string(req.Mode()), err)
	}
	return decodeResult(sr)
}

func decodeResult(sr *db.SearchResult) (result.Result, error) {
	if sr == nil || len(sr.Entries) == 0 {
		total := 0
		if sr != nil {
			total = sr.Total
		}
		return result.New(total, nil), nil
	}

	hits := make([]sighting.Document, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		d, err := document.DecodeFields(e.Key, e.Fields)
		if err != nil {
			return result.Result{}, err
		}
		d = d.WithScore(e.Score)
		if h, ok := e.Highlights[document.FieldDescription]; ok {
			d = d.WithHighlight(h)
		}
		hits = append(hits, d)
	}
	return result.New(sr.Total, hits), nil
}
