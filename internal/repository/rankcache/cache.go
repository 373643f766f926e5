// Package rankcache memoizes weekly top-per-state rankings.
package rankcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/domain"
	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	"github.com/kailas-cloud/ufotracker/internal/repository/document"
)

// Loader computes a ranking on a cache miss.
type Loader = func(ctx context.Context) ([]analytics.WeeklyTopSighting, error)

// store is the consumer interface for the shared cache layer (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache is a two-layer ranking cache: process memory first, then an optional shared store.
// Concurrent misses for one key run the loader once; a waiter whose context
// ends returns early while the load continues for the rest.
type Cache struct {
	local      *gocache.Cache
	shared     store
	ttl        time.Duration
	flight     singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a ranking cache. shared may be nil; ttl <= 0 keeps entries forever.
// cacheTotal is a counter vec with label "result" ("hit"/"shared_hit"/"miss"), passed explicitly.
func New(shared store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	expiration, cleanup := gocache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiration, cleanup = ttl, ttl
	} else {
		ttl = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		local:      gocache.New(expiration, cleanup),
		shared:     shared,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Key returns the cache key of a canonical ISO reference date.
func Key(date string) string {
	return domain.WeekCachePrefix + date
}

// GetOrLoad returns the cached ranking for date or computes and stores it.
// Loader errors are returned and never cached.
func (c *Cache) GetOrLoad(ctx context.Context, date string, load Loader) ([]analytics.WeeklyTopSighting, error) {
	key := Key(date)

	if tops, ok := c.getLocal(key); ok {
		c.inc("hit")
		return tops, nil
	}

	// The flight outlives any single waiter, so it runs without their cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		// A flight that finished just before this one may have filled the entry.
		if tops, ok := c.getLocal(key); ok {
			c.inc("hit")
			return tops, nil
		}
		if tops, ok := c.getShared(flightCtx, key); ok {
			c.inc("shared_hit")
			c.local.SetDefault(key, tops)
			return tops, nil
		}

		c.inc("miss")
		tops, err := load(flightCtx)
		if err != nil {
			return nil, err
		}
		tops = clone(tops)
		c.local.SetDefault(key, tops)
		c.putShared(flightCtx, key, tops)
		return tops, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load ranking %s: %w", date, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load ranking %s: %w", date, res.Err)
		}
		return clone(res.Val.([]analytics.WeeklyTopSighting)), nil
	}
}

// Invalidate drops a cached ranking from process memory.
func (c *Cache) Invalidate(date string) {
	c.local.Delete(Key(date))
}

func (c *Cache) getLocal(key string) ([]analytics.WeeklyTopSighting, bool) {
	v, ok := c.local.Get(key)
	if !ok {
		return nil, false
	}
	return clone(v.([]analytics.WeeklyTopSighting)), true
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// --- Shared layer ---

type entry struct {
	State  string            `json:"state"`
	Fields map[string]string `json:"fields"`
}

func (c *Cache) getShared(ctx context.Context, key string) ([]analytics.WeeklyTopSighting, bool) {
	if c.shared == nil {
		return nil, false
	}
	data, err := c.shared.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get shared ranking", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	tops, err := decodeEntries(data)
	if err != nil {
		c.logger.Warn("Failed to parse shared ranking", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return tops, true
}

func (c *Cache) putShared(ctx context.Context, key string, tops []analytics.WeeklyTopSighting) {
	if c.shared == nil {
		return
	}
	entries := make([]entry, len(tops))
	for i, t := range tops {
		entries[i] = entry{State: t.State, Fields: document.EncodeFields(t.Sighting)}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("Failed to encode ranking", zap.String("key", key), zap.Error(err))
		return
	}

	if c.ttl > 0 {
		err = c.shared.SetWithTTL(ctx, key, data, c.ttl)
	} else {
		err = c.shared.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to store shared ranking", zap.String("key", key), zap.Error(err))
	}
}

func decodeEntries(data []byte) ([]analytics.WeeklyTopSighting, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal ranking: %w", err)
	}
	tops := make([]analytics.WeeklyTopSighting, len(entries))
	for i, e := range entries {
		d, err := document.DecodeFields("", e.Fields)
		if err != nil {
			return nil, err
		}
		tops[i] = analytics.WeeklyTopSighting{State: e.State, Sighting: d}
	}
	return tops, nil
}

// clone copies the slice header; documents are immutable values.
func clone(tops []analytics.WeeklyTopSighting) []analytics.WeeklyTopSighting {
	if tops == nil {
		return []analytics.WeeklyTopSighting{}
	}
	out := make([]analytics.WeeklyTopSighting, len(tops))
	copy(out, tops)
	return out
}
