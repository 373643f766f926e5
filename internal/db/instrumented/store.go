// Package instrumented decorates a db.Store with backend metrics and slow-call logging.
package instrumented

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/logger"
	"github.com/kailas-cloud/ufotracker/internal/metrics"
)

// DefaultSlowThreshold is the duration above which a backend call is logged at warn level.
const DefaultSlowThreshold = 250 * time.Millisecond

// Operation labels.
const (
	OpSearch    = "search"
	OpCount     = "count"
	OpAggregate = "aggregate"
	OpBulkWrite = "bulk_write"
)

// Store wraps the query and bulk write paths of a db.Store.
// Other methods pass through to the embedded store untouched.
type Store struct {
	db.Store
	slow   time.Duration
	logger *zap.Logger
}

// New wraps inner. A nil logger falls back to the request-scoped one.
func New(inner db.Store, logger *zap.Logger) *Store {
	return &Store{Store: inner, slow: DefaultSlowThreshold, logger: logger}
}

// WithSlowThreshold configures the slow-call warning threshold.
func (s *Store) WithSlowThreshold(d time.Duration) *Store {
	if d > 0 {
		s.slow = d
	}
	return s
}

// Search records FT.SEARCH calls.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	start := time.Now()
	res, err := s.Store.Search(ctx, q)
	s.observe(ctx, OpSearch, q.IndexName, start, err)
	return res, err //nolint:wrapcheck // decorator is transparent
}

// Count records count-only searches.
func (s *Store) Count(ctx context.Context, q *db.CountQuery) (int64, error) {
	start := time.Now()
	n, err := s.Store.Count(ctx, q)
	s.observe(ctx, OpCount, q.IndexName, start, err)
	return n, err //nolint:wrapcheck // decorator is transparent
}

// Aggregate records FT.AGGREGATE calls.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (db.Values, error) {
	start := time.Now()
	v, err := s.Store.Aggregate(ctx, q)
	s.observe(ctx, OpAggregate, q.IndexName, start, err)
	return v, err //nolint:wrapcheck // decorator is transparent
}

// HSetMulti records pipelined document writes.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	start := time.Now()
	err := s.Store.HSetMulti(ctx, items)
	s.observe(ctx, OpBulkWrite, "", start, err)
	return err //nolint:wrapcheck // decorator is transparent
}

func (s *Store) observe(ctx context.Context, op, index string, start time.Time, err error) {
	d := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.BackendRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(d.Seconds())

	l := s.logger
	if l == nil {
		l = logger.FromContext(ctx)
	}
	switch {
	case err != nil:
		l.Error("Backend request failed",
			zap.String("op", op),
			zap.String("index", index),
			zap.Duration("duration", d),
			zap.Error(err),
		)
	case d >= s.slow:
		l.Warn("Slow backend request",
			zap.String("op", op),
			zap.String("index", index),
			zap.Duration("duration", d),
		)
	}
}
