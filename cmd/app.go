package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kasuboski/shokoz/config"
	mhttp "github.com/kasuboski/shokoz/pkg/http"
	"github.com/kasuboski/shokoz/pkg/manager"
	"github.com/kasuboski/shokoz/pkg/metrics"
	"github.com/kasuboski/shokoz/pkg/shoko"
	"github.com/kasuboski/shokoz/pkg/storage"
	"github.com/kasuboski/shokoz/pkg/storage/sqlite"
	"github.com/kasuboski/shokoz/pkg/usersync"
	"github.com/kasuboski/shokoz/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

// app holds the components every command builds from the configuration
type app struct {
	cfg      config.Config
	store    storage.Storage
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	resolver *manager.ShowResolver
	seasons  *manager.SeasonProvider
	pool     *worker.Pool
	engine   *usersync.Engine
}

func loadConfig() (config.Config, error) {
	cfg, err := config.New(viper.GetViper())
	if err != nil {
		return cfg, fmt.Errorf("failed to read configurations: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	store, err := sqlite.New(ctx, cfg.Storage.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage connection: %w", err)
	}
	if err := store.RunMigrations(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	httpClient := mhttp.NewRateLimitedHTTPClient(
		mhttp.WithHTTPClient(&http.Client{Timeout: cfg.Shoko.Timeout}),
		mhttp.WithMaxRetries(cfg.Shoko.MaxRetries),
		mhttp.WithBaseBackoff(cfg.Shoko.BaseBackoff),
	)
	svc, err := shoko.New(cfg.Shoko.Scheme, cfg.Shoko.Host, cfg.Shoko.APIKey, shoko.WithHTTPClient(httpClient))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create shoko client: %w", err)
	}

	resolver := manager.NewShowResolver(svc, cfg.Metadata, m)
	pool := worker.New(cfg.Sync.Workers, cfg.Sync.QueueSize, m)

	engine, err := usersync.New(svc, store, pool, cfg.Sync, m)
	if err != nil {
		pool.Close()
		store.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		store:    store,
		registry: registry,
		metrics:  m,
		resolver: resolver,
		seasons:  manager.NewSeasonProvider(resolver, cfg.Metadata, m),
		pool:     pool,
		engine:   engine,
	}, nil
}

// scanExecutor runs a library scan as a scheduler job
func (a *app) scanExecutor() manager.JobExecutor {
	return manager.ProgressExecutor(a.store, func(ctx context.Context, progress manager.ProgressFunc) error {
		return a.engine.ScanLibrary(ctx, progress)
	})
}

// Close drains queued sync work before closing storage
func (a *app) Close() {
	a.pool.Close()
	a.store.Close()
}
