package chi

import (
	"context"

	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/result"
	"github.com/kailas-cloud/ufotracker/internal/domain/sighting"
	healthuc "github.com/kailas-cloud/ufotracker/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ufotracker/internal/usecase/search"
)

// SearchService is the query facade consumed by the search routes.
//
//nolint:interfacebloat // one method per route
type SearchService interface {
	TextSearch(ctx context.Context, query string, page, size int) (result.Result, error)
	AdvancedSearch(
		ctx context.Context, state string, objectType *string, minReliability *int, page, size int,
	) (result.Result, error)
	NearbySearch(ctx context.Context, lat, lon, radiusKm float64, size int) (result.Result, error)
	CategoryDistribution(ctx context.Context) ([]analytics.CategoryCount, error)
	StateCounts(ctx context.Context) ([]analytics.CategoryCount, error)
	ReliabilityStatistics(ctx context.Context) (analytics.ReliabilityStats, error)
	MeanReliability(ctx context.Context) (float64, error)
	HourlyTimeline(ctx context.Context) ([]analytics.TimelinePoint, error)
	WeeklyTop(ctx context.Context, date string) (searchuc.WeeklyTop, error)
	WeeklyRanking(ctx context.Context, date string) (searchuc.WeeklyRanking, error)
}

// SightingService manages catalog records.
type SightingService interface {
	Create(ctx context.Context, rec sighting.Record) (sighting.Record, error)
	Get(ctx context.Context, id string) (sighting.Record, error)
	Update(ctx context.Context, id string, p sighting.Patch) (sighting.Record, error)
	List(ctx context.Context, page, size int) ([]sighting.Record, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
