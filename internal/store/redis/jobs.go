package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/store"
	"github.com/redis/go-redis/v9"
)

// SaveJob stores a job status record with the configured TTL
func (s *Store) SaveJob(ctx context.Context, job *domain.JobRecord) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, JobKey(job.ID), data, s.jobTTL)
	if job.State.Finished() {
		pipe.ZAdd(ctx, KeyFinishedJobs, redis.Z{
			Score:  float64(job.FinishedAt.Unix()),
			Member: job.ID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

// FindJob retrieves a job status record
func (s *Store) FindJob(ctx context.Context, id string) (*domain.JobRecord, error) {
	data, err := s.client.Get(ctx, JobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("job %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var job domain.JobRecord
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// PruneJobs removes finished job records older than before
func (s *Store) PruneJobs(ctx context.Context, before time.Time) (int, error) {
	ids, err := s.client.ZRangeByScore(ctx, KeyFinishedJobs, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(before.Unix(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list finished jobs: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, JobKey(id))
		pipe.ZRem(ctx, KeyFinishedJobs, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to prune jobs: %w", err)
	}
	return len(ids), nil
}
