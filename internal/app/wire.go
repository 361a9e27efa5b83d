package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/curator/internal/config"
	"github.com/MrSnakeDoc/curator/internal/enrich"
	"github.com/MrSnakeDoc/curator/internal/index"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/metadata"
	"github.com/MrSnakeDoc/curator/internal/metrics"
	"github.com/MrSnakeDoc/curator/internal/organise"
	"github.com/MrSnakeDoc/curator/internal/redis"
	"github.com/MrSnakeDoc/curator/internal/scheduler"
	"github.com/MrSnakeDoc/curator/internal/sources/taxonomy"
	"github.com/MrSnakeDoc/curator/internal/store"
	redisstore "github.com/MrSnakeDoc/curator/internal/store/redis"
	"github.com/MrSnakeDoc/curator/internal/utils"
)

// Components is the wired curation pipeline shared by the server and the CLI.
type Components struct {
	Store       store.Store
	Jobs        store.Jobs
	RedisClient *goredis.Client // nil in memory mode
	Enricher    *enrich.Client
	Metrics     *metrics.Collector
	Tracker     *scheduler.Tracker // nil unless background jobs were requested
	Service     *organise.Service
}

// Wire connects the configured store and builds the pipeline on top of it.
// With background set, bulk passes can be started asynchronously.
func Wire(ctx context.Context, cfg *config.Config, log logger.Logger, background bool) (*Components, error) {
	c := &Components{Metrics: metrics.NewCollector()}

	switch cfg.Store {
	case config.StoreRedis:
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s := redisstore.NewStore(client, cfg.JobTTL)
		c.RedisClient = client
		c.Store = s
		c.Jobs = s
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		c.Store = index.NewMemoryStore()
		c.Jobs = index.NewMemoryJobs()
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	tax, err := taxonomy.NewLoader(cfg.TaxonomyFile).Load()
	if err != nil {
		c.Close(log)
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	if cfg.TaxonomyFile != "" {
		log.Info("taxonomy overrides loaded", logger.String("file", cfg.TaxonomyFile))
	}

	c.Enricher = enrich.New(enrich.Options{
		BaseURL:        cfg.EngineURL,
		Timeout:        cfg.EngineTimeout,
		BreakerEnabled: cfg.BreakerEnabled,
		BreakerTimeout: cfg.BreakerTimeout,
	}, log, c.Metrics)

	fetcher := metadata.NewFetcher(metadata.Options{
		Timeout:      cfg.FetchTimeout,
		MaxRedirects: cfg.FetchMaxRedirects,
		UserAgent:    cfg.FetchUserAgent,
	}, log, c.Metrics)

	if background {
		c.Tracker = scheduler.NewTracker(c.Jobs, log, c.Metrics)
	}

	c.Service = organise.NewService(organise.RunnerDeps{
		Store:    c.Store,
		Fetcher:  fetcher,
		Enricher: c.Enricher,
		Taxonomy: tax,
		Logger:   log,
		Metrics:  c.Metrics,
	}, c.Tracker)

	return c, nil
}

// Close releases the redis connection, if any.
func (c *Components) Close(log logger.Logger) {
	if c.RedisClient != nil {
		utils.CloseLogged(c.RedisClient, log, "redis")
	}
}
