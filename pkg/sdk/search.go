package ufotracker

import (
	"context"
	"time"

	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/result"
)

// SearchService runs text, filtered and geographic searches.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// Text runs a fuzzy full-text search over descriptions, best matches first.
// A blank query returns an empty result.
func (s *SearchService) Text(ctx context.Context, query string, page, size int) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search_text", start, err) }()

	res, err := s.svc.TextSearch(ctx, query, page, size)
	if err != nil {
		return SearchResult{}, err
	}
	return toSearchResult(res), nil
}

// Advanced filters by state, and optionally by object type and minimum reliability.
func (s *SearchService) Advanced(
	ctx context.Context, state string, objectType *string, minReliability *int, page, size int,
) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search_advanced", start, err) }()

	res, err := s.svc.AdvancedSearch(ctx, state, objectType, minReliability, page, size)
	if err != nil {
		return SearchResult{}, err
	}
	return toSearchResult(res), nil
}

// Nearby returns sightings within radiusKm of (lat, lon). radiusKm <= 0 means 50 km.
func (s *SearchService) Nearby(ctx context.Context, lat, lon, radiusKm float64, size int) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search_nearby", start, err) }()

	res, err := s.svc.NearbySearch(ctx, lat, lon, radiusKm, size)
	if err != nil {
		return SearchResult{}, err
	}
	return toSearchResult(res), nil
}

func toSearchResult(r result.Result) SearchResult {
	hits := make([]Hit, len(r.Hits()))
	for i, d := range r.Hits() {
		hits[i] = hitFromDocument(d)
	}
	return SearchResult{Total: r.Total(), Hits: hits}
}

// StatsService computes aggregations over all sightings.
type StatsService struct {
	svc searchUseCase
	obs *observer
}

// ObjectTypes counts object types reported since the start of last year (top 20).
func (s *StatsService) ObjectTypes(ctx context.Context) (_ []CategoryCount, err error) {
	start := time.Now()
	defer func() { s.obs.observe("stats_object_types", start, err) }()

	counts, err := s.svc.CategoryDistribution(ctx)
	if err != nil {
		return nil, err
	}
	return toCategoryCounts(counts), nil
}

// States counts sightings per state.
func (s *StatsService) States(ctx context.Context) (_ []CategoryCount, err error) {
	start := time.Now()
	defer func() { s.obs.observe("stats_states", start, err) }()

	counts, err := s.svc.StateCounts(ctx)
	if err != nil {
		return nil, err
	}
	return toCategoryCounts(counts), nil
}

// Reliability returns mean, standard deviation and the count of sightings
// with reliability >= 70.
func (s *StatsService) Reliability(ctx context.Context) (_ ReliabilityStats, err error) {
	start := time.Now()
	defer func() { s.obs.observe("stats_reliability", start, err) }()

	st, err := s.svc.ReliabilityStatistics(ctx)
	if err != nil {
		return ReliabilityStats{}, err
	}
	return ReliabilityStats{Mean: st.Mean, StdDev: st.StdDev, HighReliabilityCount: st.HighReliabilityCount}, nil
}

// MeanReliability returns the mean reliability, 0 when no sighting has one.
func (s *StatsService) MeanReliability(ctx context.Context) (_ float64, err error) {
	start := time.Now()
	defer func() { s.obs.observe("stats_reliability_mean", start, err) }()

	return s.svc.MeanReliability(ctx)
}

// Timeline counts sightings of the last 30 days per 3-hour slot of the day.
func (s *StatsService) Timeline(ctx context.Context) (_ []TimelinePoint, err error) {
	start := time.Now()
	defer func() { s.obs.observe("stats_timeline", start, err) }()

	points, err := s.svc.HourlyTimeline(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TimelinePoint, len(points))
	for i, p := range points {
		out[i] = TimelinePoint{Label: p.Label, Count: p.Count}
	}
	return out, nil
}

func toCategoryCounts(in []analytics.CategoryCount) []CategoryCount {
	out := make([]CategoryCount, len(in))
	for i, c := range in {
		out[i] = CategoryCount{Category: c.Category, Count: c.Count}
	}
	return out
}

// WeeklyService resolves per-state weekly rankings. date is a YYYY-MM-DD reference;
// the ranked week is the calendar week before the week containing it.
type WeeklyService struct {
	svc searchUseCase
	obs *observer
}

// Top returns the most reliable sighting per state.
func (s *WeeklyService) Top(ctx context.Context, date string) (_ WeeklyTop, err error) {
	start := time.Now()
	defer func() { s.obs.observe("weekly_top", start, err) }()

	top, err := s.svc.WeeklyTop(ctx, date)
	if err != nil {
		return WeeklyTop{}, err
	}
	tops := make([]StateTop, len(top.Tops))
	for i, t := range top.Tops {
		tops[i] = StateTop{State: t.State, Sighting: sightingFromDocument(t.Sighting)}
	}
	return WeeklyTop{Week: weekFromWindow(top.Window), Tops: tops}, nil
}

// Ranking returns (state, reliability) entries in Top order.
func (s *WeeklyService) Ranking(ctx context.Context, date string) (_ WeeklyRanking, err error) {
	start := time.Now()
	defer func() { s.obs.observe("weekly_ranking", start, err) }()

	r, err := s.svc.WeeklyRanking(ctx, date)
	if err != nil {
		return WeeklyRanking{}, err
	}
	entries := make([]RankingEntry, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = RankingEntry{State: e.State, Reliability: e.Reliability}
	}
	return WeeklyRanking{Week: weekFromWindow(r.Window), Entries: entries}, nil
}
