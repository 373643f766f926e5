package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ufotracker/internal/config"
	"github.com/kailas-cloud/ufotracker/internal/db/instrumented"
	dbRedis "github.com/kailas-cloud/ufotracker/internal/db/redis"
	logpkg "github.com/kailas-cloud/ufotracker/internal/logger"
	"github.com/kailas-cloud/ufotracker/internal/metrics"
	aggregationrepo "github.com/kailas-cloud/ufotracker/internal/repository/aggregation"
	catalogrepo "github.com/kailas-cloud/ufotracker/internal/repository/catalog"
	documentrepo "github.com/kailas-cloud/ufotracker/internal/repository/document"
	"github.com/kailas-cloud/ufotracker/internal/repository/rankcache"
	searchrepo "github.com/kailas-cloud/ufotracker/internal/repository/search"
	chiTransport "github.com/kailas-cloud/ufotracker/internal/transport/chi"
	healthuc "github.com/kailas-cloud/ufotracker/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ufotracker/internal/usecase/search"
	sightinguc "github.com/kailas-cloud/ufotracker/internal/usecase/sighting"
	"github.com/kailas-cloud/ufotracker/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, "ufotracker", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ufotracker API server",
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Search.IndexName),
	)

	redisStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer redisStore.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := redisStore.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register backend metrics explicitly (no init())
	metrics.RegisterBackendMetrics()

	store := instrumented.New(redisStore, logger).
		WithSlowThreshold(time.Duration(cfg.Search.SlowQueryMs) * time.Millisecond)

	docRepo := documentrepo.New(store, cfg.Search.IndexName)
	created, err := docRepo.EnsureIndex(ctx)
	if err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err))
	}
	logger.Info("Search index ready", zap.String("index", docRepo.Index()), zap.Bool("created", created))

	catalog, err := catalogrepo.Open(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer func() { _ = catalog.Close() }()

	searchRepo := searchrepo.New(store, cfg.Search.IndexName)
	aggEngine := aggregationrepo.New(store, cfg.Search.IndexName).
		WithStateBucketLimit(cfg.Search.StateBucketLimit)

	rankCache := buildRankCache(cfg.Cache, store, logger)

	// Create use case services
	searchSvc := searchuc.New(searchRepo, aggEngine, rankCache)
	sightingSvc := sightinguc.New(catalog, docRepo).WithMaxImportSize(cfg.Catalog.MaxImportSize)
	healthSvc := healthuc.New(redisStore, catalog)

	server := chiTransport.NewServer(searchSvc, sightingSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildRankCache creates the weekly ranking cache, mirrored into the backend when shared is on.
func buildRankCache(cfg config.CacheConfig, store *instrumented.Store, logger *zap.Logger) *rankcache.Cache {
	ttl := time.Duration(cfg.TTLSec) * time.Second
	if !cfg.Shared {
		return rankcache.New(nil, ttl, metrics.RankCacheTotal, logger)
	}
	return rankcache.New(store, ttl, metrics.RankCacheTotal, logger)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx := logpkg.ContextWithLogger(r.Context(), logger)
			ctx = logpkg.With(ctx, zap.String("request_id", requestID))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line: one per request
			logpkg.FromContext(ctx).Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
