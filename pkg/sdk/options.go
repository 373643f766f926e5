package ufotracker

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string

	indexName   string
	catalogPath string
	ensureIndex bool

	rankingTTL    time.Duration
	maxImportSize int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the Redis instance holding the search index.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisCluster configures several seed addresses and ACL credentials.
func WithRedisCluster(addrs []string, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = append([]string(nil), addrs...)
		c.username = username
		c.password = password
	})
}

// WithIndex overrides the search index name. Default: "ufo-avistamentos".
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
	})
}

// WithCatalog opens the SQLite catalog at path and enables Sightings().
// ":memory:" keeps the catalog in process memory.
func WithCatalog(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = path
	})
}

// WithEnsureIndex creates the search index on New when it does not exist.
func WithEnsureIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.ensureIndex = true
	})
}

// WithRankingTTL sets how long weekly rankings stay cached in process memory.
// Zero (default) keeps them until the client is closed.
func WithRankingTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.rankingTTL = ttl
	})
}

// WithMaxImportSize sets the maximum number of records per Import call.
// Default: 500.
func WithMaxImportSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxImportSize = size
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
