package ufotracker

import (
	"context"

	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	dombatch "github.com/kailas-cloud/ufotracker/internal/domain/batch"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/result"
	domsighting "github.com/kailas-cloud/ufotracker/internal/domain/sighting"
	healthuc "github.com/kailas-cloud/ufotracker/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ufotracker/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	textFn     func(ctx context.Context, query string, page, size int) (result.Result, error)
	advancedFn func(ctx context.Context, state string, objectType *string, minRel *int, page, size int) (result.Result, error)
	nearbyFn   func(ctx context.Context, lat, lon, radiusKm float64, size int) (result.Result, error)
	statsFn    func(ctx context.Context) (analytics.ReliabilityStats, error)
	topFn      func(ctx context.Context, date string) (searchuc.WeeklyTop, error)
	rankingFn  func(ctx context.Context, date string) (searchuc.WeeklyRanking, error)
}

func (m *mockSearchUC) TextSearch(ctx context.Context, query string, page, size int) (result.Result, error) {
	return m.textFn(ctx, query, page, size)
}

func (m *mockSearchUC) AdvancedSearch(
	ctx context.Context, state string, objectType *string, minReliability *int, page, size int,
) (result.Result, error) {
	return m.advancedFn(ctx, state, objectType, minReliability, page, size)
}

func (m *mockSearchUC) NearbySearch(ctx context.Context, lat, lon, radiusKm float64, size int) (result.Result, error) {
	return m.nearbyFn(ctx, lat, lon, radiusKm, size)
}

func (m *mockSearchUC) CategoryDistribution(context.Context) ([]analytics.CategoryCount, error) {
	return []analytics.CategoryCount{{Category: "disco", Count: 7}, {Category: "esfera", Count: 2}}, nil
}

func (m *mockSearchUC) StateCounts(context.Context) ([]analytics.CategoryCount, error) {
	return []analytics.CategoryCount{{Category: "SP", Count: 3}}, nil
}

func (m *mockSearchUC) ReliabilityStatistics(ctx context.Context) (analytics.ReliabilityStats, error) {
	return m.statsFn(ctx)
}

func (m *mockSearchUC) MeanReliability(context.Context) (float64, error) { return 61.5, nil }

func (m *mockSearchUC) HourlyTimeline(context.Context) ([]analytics.TimelinePoint, error) {
	return analytics.EmptyTimeline(), nil
}

func (m *mockSearchUC) WeeklyTop(ctx context.Context, date string) (searchuc.WeeklyTop, error) {
	return m.topFn(ctx, date)
}

func (m *mockSearchUC) WeeklyRanking(ctx context.Context, date string) (searchuc.WeeklyRanking, error) {
	return m.rankingFn(ctx, date)
}

// --- sightingUseCase mock ---

type mockSightingUC struct {
	createFn func(ctx context.Context, rec domsighting.Record) (domsighting.Record, error)
	getFn    func(ctx context.Context, id string) (domsighting.Record, error)
	updateFn func(ctx context.Context, id string, p domsighting.Patch) (domsighting.Record, error)
	listFn   func(ctx context.Context, page, size int) ([]domsighting.Record, error)
	importFn func(ctx context.Context, recs []domsighting.Record) []dombatch.Result
}

func (m *mockSightingUC) Create(ctx context.Context, rec domsighting.Record) (domsighting.Record, error) {
	return m.createFn(ctx, rec)
}

func (m *mockSightingUC) Get(ctx context.Context, id string) (domsighting.Record, error) {
	return m.getFn(ctx, id)
}

func (m *mockSightingUC) Update(ctx context.Context, id string, p domsighting.Patch) (domsighting.Record, error) {
	return m.updateFn(ctx, id, p)
}

func (m *mockSightingUC) List(ctx context.Context, page, size int) ([]domsighting.Record, error) {
	return m.listFn(ctx, page, size)
}

func (m *mockSightingUC) Import(ctx context.Context, recs []domsighting.Record) []dombatch.Result {
	return m.importFn(ctx, recs)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
