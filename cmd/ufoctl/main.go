// Package main is the ufoctl admin CLI: index lifecycle, bulk loads and ranking checks.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ufotracker/internal/config"
	"github.com/kailas-cloud/ufotracker/internal/db/instrumented"
	dbRedis "github.com/kailas-cloud/ufotracker/internal/db/redis"
	logpkg "github.com/kailas-cloud/ufotracker/internal/logger"
	aggregationrepo "github.com/kailas-cloud/ufotracker/internal/repository/aggregation"
	catalogrepo "github.com/kailas-cloud/ufotracker/internal/repository/catalog"
	documentrepo "github.com/kailas-cloud/ufotracker/internal/repository/document"
	searchrepo "github.com/kailas-cloud/ufotracker/internal/repository/search"
	searchuc "github.com/kailas-cloud/ufotracker/internal/usecase/search"
	sightinguc "github.com/kailas-cloud/ufotracker/internal/usecase/sighting"
)

var rootCmd = &cobra.Command{
	Use:   "ufoctl",
	Short: "Administer the ufotracker search index and catalog",
	Long: `ufoctl manages the sighting search index (create, drop, rebuild),
bulk-loads sightings from JSON Lines files into the catalog and index,
and prints weekly rankings straight from the search backend.

Configuration comes from config/<env>.yaml (--env, UFOCTL_ENV) or an
explicit file (--config, UFOCTL_CONFIG).`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("env", "local", "environment name, selects config/<env>.yaml")
	rootCmd.PersistentFlags().String("config", "", "explicit config file (overrides --env)")
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Minute, "overall command timeout")

	_ = viper.BindPFlag("env", rootCmd.PersistentFlags().Lookup("env"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

// initConfig reads UFOCTL_* environment variables.
func initConfig() {
	viper.SetEnvPrefix("UFOCTL")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, string, error) {
	env := viper.GetString("env")
	if path := viper.GetString("config"); path != "" {
		cfg, err := config.LoadFile(path)
		return cfg, env, err
	}
	cfg, err := config.Load(env)
	return cfg, env, err
}

// app holds the components a command needs. Close releases them.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *dbRedis.Store
	docs      *documentrepo.Repo
	catalog   *catalogrepo.Repo
	search    *searchuc.Service
	sightings *sightinguc.Service
}

func openApp(ctx context.Context) (*app, error) {
	cfg, env, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, "ufoctl", cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	redisStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := redisStore.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		redisStore.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	catalog, err := catalogrepo.Open(cfg.Catalog.Path)
	if err != nil {
		redisStore.Close()
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	store := instrumented.New(redisStore, logger)
	docs := documentrepo.New(store, cfg.Search.IndexName)
	aggs := aggregationrepo.New(store, cfg.Search.IndexName).WithStateBucketLimit(cfg.Search.StateBucketLimit)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     redisStore,
		docs:      docs,
		catalog:   catalog,
		search:    searchuc.New(searchrepo.New(store, cfg.Search.IndexName), aggs, nil),
		sightings: sightinguc.New(catalog, docs).WithMaxImportSize(cfg.Catalog.MaxImportSize),
	}, nil
}

func (a *app) Close() {
	_ = a.catalog.Close()
	a.store.Close()
	_ = a.logger.Sync()
}

// withApp runs fn with a fully wired app and a context bounded by --timeout.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = logpkg.ContextWithLogger(ctx, a.logger)
	ctx = logpkg.With(ctx, zap.String("command", cmd.CommandPath()))
	return fn(ctx, a)
}
