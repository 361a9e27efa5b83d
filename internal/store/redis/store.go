package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/store"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultJobTTL is the default TTL for job status records (24 hours)
	DefaultJobTTL = 24 * time.Hour

	// maxUpdateRetries bounds optimistic-lock retries in UpdateResource
	maxUpdateRetries = 5
)

// Store is the Redis-backed document store
type Store struct {
	client *redis.Client
	jobTTL time.Duration
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Jobs  = (*Store)(nil)
)

// NewStore creates a new Redis store. A non-positive jobTTL uses DefaultJobTTL.
func NewStore(client *redis.Client, jobTTL time.Duration) *Store {
	if jobTTL <= 0 {
		jobTTL = DefaultJobTTL
	}
	return &Store{
		client: client,
		jobTTL: jobTTL,
	}
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// CreateResource stores a new resource in Redis
func (s *Store) CreateResource(ctx context.Context, r *domain.Resource) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.UpdatedAt = r.CreatedAt

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal resource: %w", err)
	}

	ok, err := s.client.SetNX(ctx, ResourceKey(r.Scope, r.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to save resource: %w", err)
	}
	if !ok {
		return fmt.Errorf("resource %s: %w", r.ID, store.ErrDuplicate)
	}

	if err := s.client.SAdd(ctx, AllResourcesKey(r.Scope), r.ID).Err(); err != nil {
		return fmt.Errorf("failed to add resource to set: %w", err)
	}
	return nil
}

// FindResource retrieves a resource by ID within scope
func (s *Store) FindResource(ctx context.Context, scope domain.Scope, id string) (*domain.Resource, error) {
	data, err := s.client.Get(ctx, ResourceKey(scope, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("resource %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	var r domain.Resource
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resource: %w", err)
	}
	if r.Scope != scope {
		return nil, fmt.Errorf("resource %s: %w", id, store.ErrNotFound)
	}
	return &r, nil
}

// FindResources returns at most limit resources matching filter, oldest first
func (s *Store) FindResources(ctx context.Context, filter store.ResourceFilter, limit int) ([]*domain.Resource, error) {
	ids, err := s.client.SMembers(ctx, AllResourcesKey(filter.Scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get resource IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Resource{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, ResourceKey(filter.Scope, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}

	matches := make([]*domain.Resource, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			// Skip IDs whose record vanished
			continue
		}
		var r domain.Resource
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		if filter.Match(&r) {
			matches = append(matches, &r)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// UpdateResource applies patch under WATCH so concurrent writers never lose fields
func (s *Store) UpdateResource(ctx context.Context, scope domain.Scope, id string, patch domain.ResourcePatch) error {
	key := ResourceKey(scope, id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("resource %s: %w", id, store.ErrNotFound)
			}
			return fmt.Errorf("failed to get resource: %w", err)
		}

		var r domain.Resource
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("failed to unmarshal resource: %w", err)
		}
		if r.Scope != scope {
			return fmt.Errorf("resource %s: %w", id, store.ErrNotFound)
		}
		patch.Apply(&r)
		r.UpdatedAt = time.Now()

		updated, err := json.Marshal(&r)
		if err != nil {
			return fmt.Errorf("failed to marshal resource: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("failed to update resource %s: too much contention", id)
}
