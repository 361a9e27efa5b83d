package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/curator/internal/config"
	"github.com/MrSnakeDoc/curator/internal/httpserver"
	"github.com/MrSnakeDoc/curator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/curator/internal/httpserver/mw"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/scheduler"
	"github.com/MrSnakeDoc/curator/internal/version"
)

type App struct {
	cfg        *config.Config
	logger     logger.Logger
	server     *httpserver.Server
	components *Components
	gc         *scheduler.GarbageCollector
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Connect the store early - fail fast if unavailable
	components, err := Wire(context.Background(), cfg, loggerClient, true)
	if err != nil {
		loggerClient.Errorf("Failed to initialize curator: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("store initialized", logger.String("store", cfg.Store))

	gc := scheduler.NewGarbageCollector(
		components.Jobs,
		loggerClient,
		cfg.JobGCInterval,
		cfg.JobTTL,
	)

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		RateLimit: mw.RateLimitConfig{
			Burst:        cfg.RateLimitBurst,
			RefillPerMin: cfg.RateLimitPerMin,
			MaxEntries:   10000,
			TrustProxy:   cfg.TrustProxy,
		},
		MaxUploadBytes: cfg.MaxUploadBytes,
		StoreMode:      cfg.Store,
		Store:          components.Store,
		RedisClient:    components.RedisClient,
		Organiser:      components.Service,
		Enrichment:     components.Enricher,
		Metrics:        components.Metrics,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:        cfg,
		logger:     loggerClient,
		server:     server,
		components: components,
		gc:         gc,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Curator v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Curator %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start job record garbage collector
	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.JobGCInterval),
		logger.Duration("ttl", a.cfg.JobTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.gc.Stop()
		a.components.Close(a.logger)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests first, then let running bulk passes finish.
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Warn("http server did not stop cleanly", logger.Error(err))
	}
	if err := a.components.Tracker.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("bulk passes cancelled at shutdown", logger.Error(err))
	}

	a.gc.Stop()
	a.components.Close(a.logger)

	a.logger.Info("✅ Curator stopped cleanly")
	return nil
}
