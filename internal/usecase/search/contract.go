package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/request"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/result"
	"github.com/kailas-cloud/ufotracker/internal/domain/week"
)

// Searcher runs document searches.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Result, error)
}

// Aggregator computes statistics over the index.
type Aggregator interface {
	CategoryDistribution(ctx context.Context, now time.Time) ([]analytics.CategoryCount, error)
	CountByState(ctx context.Context) ([]analytics.CategoryCount, error)
	ReliabilityStatistics(ctx context.Context) (analytics.ReliabilityStats, error)
	MeanReliability(ctx context.Context) (float64, error)
	HourlyTimeline(ctx context.Context, now time.Time) ([]analytics.TimelinePoint, error)
	TopPerState(ctx context.Context, w week.Window) ([]analytics.WeeklyTopSighting, error)
}

// RankingCache memoizes weekly rankings by canonical reference date.
type RankingCache interface {
	GetOrLoad(
		ctx context.Context, date string,
		load func(ctx context.Context) ([]analytics.WeeklyTopSighting, error),
	) ([]analytics.WeeklyTopSighting, error)
}
