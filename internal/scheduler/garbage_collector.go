package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/store"
)

const (
	// DefaultJobTTL is how long finished job records are kept.
	DefaultJobTTL = 24 * time.Hour
)

// GarbageCollector prunes finished job records
type GarbageCollector struct {
	jobs      store.Jobs
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	jobs store.Jobs,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultJobTTL
	}

	return &GarbageCollector{
		jobs:      jobs,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer close(gc.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector and waits for its loop to exit
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
	<-gc.doneCh
}

// Collect removes finished job records older than the threshold
func (gc *GarbageCollector) Collect(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-gc.threshold)

	removed, err := gc.jobs.PruneJobs(ctx, cutoff)
	if err != nil {
		return err
	}

	if removed > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("jobs_deleted", removed),
			logger.Duration("threshold", gc.threshold))
	} else {
		gc.logger.Debug("no job records to garbage collect")
	}

	return nil
}
