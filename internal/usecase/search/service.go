package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/request"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/result"
	"github.com/kailas-cloud/ufotracker/internal/domain/week"
)

// WeeklyTop is the per-state top sighting of a resolved week.
type WeeklyTop struct {
	Window week.Window
	Tops   []analytics.WeeklyTopSighting
}

// WeeklyRanking is the ranking view of a resolved week.
type WeeklyRanking struct {
	Window  week.Window
	Entries []analytics.RankingEntry
}

// Service is the query facade over searches, statistics and weekly rankings.
type Service struct {
	search Searcher
	aggs   Aggregator
	cache  RankingCache
	now    func() time.Time
}

// New creates a search service. cache can be nil.
func New(search Searcher, aggs Aggregator, cache RankingCache) *Service {
	return &Service{search: search, aggs: aggs, cache: cache, now: time.Now}
}

// WithClock replaces the clock used for trailing-year windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TextSearch runs a fuzzy description search. A blank query returns no hits.
func (s *Service) TextSearch(ctx context.Context, query string, page, size int) (result.Result, error) {
	req, err := request.NewTextSearch(query, page, size)
	if err != nil {
		return result.Result{}, err
	}
	return s.run(ctx, req)
}

// AdvancedSearch filters by state, optional object type and minimum reliability.
func (s *Service) AdvancedSearch(
	ctx context.Context, state string, objectType *string, minReliability *int, page, size int,
) (result.Result, error) {
	req, err := request.NewAdvancedFilter(state, objectType, minReliability, page, size)
	if err != nil {
		return result.Result{}, err
	}
	return s.run(ctx, req)
}

// NearbySearch returns sightings within radiusKm of the point.
func (s *Service) NearbySearch(ctx context.Context, lat, lon, radiusKm float64, size int) (result.Result, error) {
	req, err := request.NewGeoProximity(lat, lon, radiusKm, size)
	if err != nil {
		return result.Result{}, err
	}
	return s.run(ctx, req)
}

func (s *Service) run(ctx context.Context, req request.Request) (result.Result, error) {
	res, err := s.search.Search(ctx, req)
	if err != nil {
		return result.Result{}, fmt.Errorf("%s search: %w", req.Mode(), err)
	}
	return res, nil
}

// CategoryDistribution counts sightings per object type since the start of last year.
func (s *Service) CategoryDistribution(ctx context.Context) ([]analytics.CategoryCount, error) {
	return s.aggs.CategoryDistribution(ctx, s.now())
}

// StateCounts counts sightings per state.
func (s *Service) StateCounts(ctx context.Context) ([]analytics.CategoryCount, error) {
	return s.aggs.CountByState(ctx)
}

// ReliabilityStatistics summarizes reliability over all sightings.
func (s *Service) ReliabilityStatistics(ctx context.Context) (analytics.ReliabilityStats, error) {
	return s.aggs.ReliabilityStatistics(ctx)
}

// MeanReliability returns the average reliability.
func (s *Service) MeanReliability(ctx context.Context) (float64, error) {
	return s.aggs.MeanReliability(ctx)
}

// HourlyTimeline counts sightings per 3-hour slot of the day.
func (s *Service) HourlyTimeline(ctx context.Context) ([]analytics.TimelinePoint, error) {
	return s.aggs.HourlyTimeline(ctx, s.now())
}

// WeeklyTop returns the most reliable sighting per state in the week before date's week.
// date is validated before any backend call; results are cached per canonical date.
func (s *Service) WeeklyTop(ctx context.Context, date string) (WeeklyTop, error) {
	ref, err := week.ParseReference(date)
	if err != nil {
		return WeeklyTop{}, err
	}
	w := week.PreviousWeek(ref)

	load := func(ctx context.Context) ([]analytics.WeeklyTopSighting, error) {
		return s.aggs.TopPerState(ctx, w)
	}

	var tops []analytics.WeeklyTopSighting
	if s.cache != nil {
		tops, err = s.cache.GetOrLoad(ctx, week.Canonical(ref), load)
	} else {
		tops, err = load(ctx)
	}
	if err != nil {
		return WeeklyTop{}, fmt.Errorf("weekly top %s: %w", week.Canonical(ref), err)
	}
	return WeeklyTop{Window: w, Tops: tops}, nil
}

// WeeklyRanking projects WeeklyTop to (state, reliability) entries in the same order.
func (s *Service) WeeklyRanking(ctx context.Context, date string) (WeeklyRanking, error) {
	top, err := s.WeeklyTop(ctx, date)
	if err != nil {
		return WeeklyRanking{}, err
	}
	return WeeklyRanking{Window: top.Window, Entries: analytics.Ranking(top.Tops)}, nil
}
