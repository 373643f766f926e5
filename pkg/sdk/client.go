package ufotracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/kailas-cloud/ufotracker/internal/db/redis"
	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	dombatch "github.com/kailas-cloud/ufotracker/internal/domain/batch"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/result"
	domsighting "github.com/kailas-cloud/ufotracker/internal/domain/sighting"
	aggregationrepo "github.com/kailas-cloud/ufotracker/internal/repository/aggregation"
	catalogrepo "github.com/kailas-cloud/ufotracker/internal/repository/catalog"
	documentrepo "github.com/kailas-cloud/ufotracker/internal/repository/document"
	"github.com/kailas-cloud/ufotracker/internal/repository/rankcache"
	searchrepo "github.com/kailas-cloud/ufotracker/internal/repository/search"
	healthuc "github.com/kailas-cloud/ufotracker/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ufotracker/internal/usecase/search"
	sightinguc "github.com/kailas-cloud/ufotracker/internal/usecase/sighting"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type searchUseCase interface {
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

type sightingUseCase interface {
	Create(ctx context.Context, rec domsighting.Record) (domsighting.Record, error)
	Get(ctx context.Context, id string) (domsighting.Record, error)
	Update(ctx context.Context, id string, p domsighting.Patch) (domsighting.Record, error)
	List(ctx context.Context, page, size int) ([]domsighting.Record, error)
	Import(ctx context.Context, recs []domsighting.Record) []dombatch.Result
}

// Client is the ufotracker entry point.
type Client struct {
	closers     []func()
	searchSvc   searchUseCase
	sightingSvc sightingUseCase // nil without a catalog
	healthSvc   healthUseCase
	obs         *observer
}

// New connects to Redis and, with WithCatalog, opens the catalog.
// The provided context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if len(cfg.addrs) == 0 {
		return nil, errors.New("ufotracker: redis address required (use WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("ufotracker: create redis store: %w", err)
	}
	c := &Client{closers: []func(){store.Close}, obs: obs}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		c.Close()
		return nil, fmt.Errorf("ufotracker: redis not ready: %w", err)
	}

	docs := documentrepo.New(store, cfg.indexName)
	if cfg.ensureIndex {
		if _, err := docs.EnsureIndex(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("ufotracker: ensure index: %w", err)
		}
	}

	cache := rankcache.New(nil, cfg.rankingTTL, nil, nil)
	c.searchSvc = searchuc.New(
		searchrepo.New(store, cfg.indexName),
		aggregationrepo.New(store, cfg.indexName),
		cache,
	)

	if cfg.catalogPath == "" {
		c.healthSvc = healthuc.New(store, nil)
		return c, nil
	}

	catalog, err := catalogrepo.Open(cfg.catalogPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("ufotracker: open catalog: %w", err)
	}
	c.closers = append(c.closers, func() { _ = catalog.Close() })
	c.sightingSvc = sightinguc.New(catalog, docs).WithMaxImportSize(cfg.maxImportSize)
	c.healthSvc = healthuc.New(store, catalog)
	return c, nil
}

// Close releases all resources, most recently acquired first.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}

// Stats returns the statistics service.
func (c *Client) Stats() *StatsService {
	return &StatsService{svc: c.searchSvc, obs: c.obs}
}

// Weekly returns the weekly ranking service.
func (c *Client) Weekly() *WeeklyService {
	return &WeeklyService{svc: c.searchSvc, obs: c.obs}
}

// Sightings returns the catalog service. Its methods return ErrNoCatalog
// when the client was built without WithCatalog.
func (c *Client) Sightings() *SightingService {
	return &SightingService{svc: c.sightingSvc, obs: c.obs}
}
