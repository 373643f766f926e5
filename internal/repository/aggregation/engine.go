// Package aggregation computes the statistical views of the sighting index.
package aggregation

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/domain"
	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/filter"
	"github.com/kailas-cloud/ufotracker/internal/repository"
	"github.com/kailas-cloud/ufotracker/internal/repository/document"
)

// Bucket sizes of the terms aggregations.
const (
	CategoryBuckets         = 20
	DefaultStateBucketLimit = 1000
	TopPerStateBuckets      = 50
)

// Aggregation names.
const (
	aggByObjectType    = "by_object_type"
	aggByState         = "by_state"
	aggMean            = "reliability_mean"
	aggStats           = "reliability_stats"
	aggHighReliability = "high_reliability"
	aggTimeline        = "timeline"
	aggTopSighting     = "top_sighting"
)

// store is the consumer interface for aggregations (ISP).
type store interface {
	Aggregate(ctx context.Context, q *db.AggregateQuery) (db.Values, error)
}

// Engine implements usecase/search.Aggregator.
type Engine struct {
	store      store
	index      string
	stateLimit int
}

// New creates an aggregation engine over the named index.
func New(s store, index string) *Engine {
	if index == "" {
		index = domain.IndexName
	}
	return &Engine{store: s, index: index, stateLimit: DefaultStateBucketLimit}
}

// WithStateBucketLimit caps the number of states CountByState reports.
func (e *Engine) WithStateBucketLimit(n int) *Engine {
	if n > 0 {
		e.stateLimit = n
	}
	return e
}

// TrailingYearStart returns midnight UTC of January 1st of the year before now.
func TrailingYearStart(now time.Time) time.Time {
	return time.Date(now.UTC().Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// CategoryDistribution counts sightings per object type since the start of last year.
func (e *Engine) CategoryDistribution(ctx context.Context, now time.Time) ([]analytics.CategoryCount, error) {
	scope, err := trailingYear(now)
	if err != nil {
		return nil, err
	}
	vals, err := e.aggregate(ctx, "category distribution", scope,
		db.Terms(aggByObjectType, document.FieldObjectType, CategoryBuckets))
	if err != nil {
		return nil, err
	}
	return counts(vals, aggByObjectType)
}

// CountByState counts sightings per state over the whole corpus.
func (e *Engine) CountByState(ctx context.Context) ([]analytics.CategoryCount, error) {
	vals, err := e.aggregate(ctx, "count by state", filter.Expression{},
		db.Terms(aggByState, document.FieldState, e.stateLimit))
	if err != nil {
		return nil, err
	}
	return counts(vals, aggByState)
}

// ReliabilityStatistics computes mean, standard deviation and the high-reliability count.
// Documents without reliability are ignored; an empty corpus yields zeros.
func (e *Engine) ReliabilityStatistics(ctx context.Context) (analytics.ReliabilityStats, error) {
	high, err := filter.NewRange(document.FieldReliability, filter.AtLeast(analytics.HighReliabilityThreshold))
	if err != nil {
		return analytics.ReliabilityStats{}, err
	}
	highExpr, err := filter.NewExpression(high)
	if err != nil {
		return analytics.ReliabilityStats{}, err
	}

	vals, err := e.aggregate(ctx, "reliability statistics", filter.Expression{},
		db.Avg(aggMean, document.FieldReliability),
		db.ExtendedStats(aggStats, document.FieldReliability),
		db.FilterCount(aggHighReliability, highExpr),
	)
	if err != nil {
		return analytics.ReliabilityStats{}, err
	}

	avg, err := vals.Avg(aggMean)
	if err != nil {
		return analytics.ReliabilityStats{}, decodeErr(err)
	}
	stats, err := vals.ExtendedStats(aggStats)
	if err != nil {
		return analytics.ReliabilityStats{}, decodeErr(err)
	}
	hc, err := vals.Filter(aggHighReliability)
	if err != nil {
		return analytics.ReliabilityStats{}, decodeErr(err)
	}

	return analytics.ReliabilityStats{
		Mean:                 orZero(avg.Value),
		StdDev:               orZero(stats.StdDev),
		HighReliabilityCount: hc.Count,
	}, nil
}

// MeanReliability returns the average reliability, 0 when no document carries one.
func (e *Engine) MeanReliability(ctx context.Context) (float64, error) {
	vals, err := e.aggregate(ctx, "mean reliability", filter.Expression{},
		db.Avg(aggMean, document.FieldReliability))
	if err != nil {
		return 0, err
	}
	avg, err := vals.Avg(aggMean)
	if err != nil {
		return 0, decodeErr(err)
	}
	return orZero(avg.Value), nil
}

// HourlyTimeline counts sightings per 3-hour slot of the UTC day since the start of last year.
// Every slot is reported, empty ones with zero.
func (e *Engine) HourlyTimeline(ctx context.Context, now time.Time) ([]analytics.TimelinePoint, error) {
	scope, err := trailingYear(now)
	if err != nil {
		return nil, err
	}
	vals, err := e.aggregate(ctx, "hourly timeline", scope,
		db.HourHistogram(aggTimeline, document.FieldTimestamp, analytics.TimelineBucketHours))
	if err != nil {
		return nil, err
	}
	h, err := vals.Histogram(aggTimeline)
	if err != nil {
		return nil, decodeErr(err)
	}

	points := analytics.EmptyTimeline()
	for _, b := range h.Buckets {
		i := b.Hour / analytics.TimelineBucketHours
		if b.Hour < 0 || i >= len(points) {
			return nil, fmt.Errorf("%w: timeline hour %d", domain.ErrDecodeFailure, b.Hour)
		}
		points[i].Count += b.Count
	}
	return points, nil
}

func (e *Engine) aggregate(
	ctx context.Context, op string, scope filter.Expression, aggs ...db.Aggregation,
) (db.Values, error) {
	vals, err := e.store.Aggregate(ctx, &db.AggregateQuery{
		IndexName:    e.index,
		Scope:        scope,
		Aggregations: aggs,
	})
	if err != nil {
		return nil, repository.BackendError(op, err)
	}
	return vals, nil
}

func trailingYear(now time.Time) (filter.Expression, error) {
	c, err := filter.NewRange(document.FieldTimestamp,
		filter.Closed(float64(TrailingYearStart(now).Unix()), float64(now.Unix())))
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.NewExpression(c)
}

func counts(vals db.Values, name string) ([]analytics.CategoryCount, error) {
	terms, err := vals.Terms(name)
	if err != nil {
		return nil, decodeErr(err)
	}
	out := make([]analytics.CategoryCount, len(terms.Buckets))
	for i, b := range terms.Buckets {
		out[i] = analytics.CategoryCount{Category: b.Key, Count: b.Count}
	}
	return out, nil
}

func decodeErr(err error) error {
	return repository.BackendError("decode aggregation", err)
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
