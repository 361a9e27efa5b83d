package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/store"
	"github.com/redis/go-redis/v9"
)

// FindTagByName looks up a tag by exact name within scope
func (s *Store) FindTagByName(ctx context.Context, scope domain.Scope, name string) (*domain.Tag, error) {
	var tag domain.Tag
	if err := s.findByName(ctx, TagNamesKey(scope), TagsKey(scope), name, &tag); err != nil {
		return nil, fmt.Errorf("tag %q: %w", name, err)
	}
	if tag.Scope != scope {
		return nil, fmt.Errorf("tag %q: %w", name, store.ErrNotFound)
	}
	return &tag, nil
}

// CreateTag stores a tag, returning store.ErrDuplicate if the name is taken in scope
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	if err := s.createNamed(ctx, TagNamesKey(tag.Scope), TagsKey(tag.Scope), tag.ID, tag.Name, tag); err != nil {
		return fmt.Errorf("tag %q: %w", tag.Name, err)
	}
	return nil
}

// FindFolder retrieves a folder by ID within scope
func (s *Store) FindFolder(ctx context.Context, scope domain.Scope, id string) (*domain.Folder, error) {
	data, err := s.client.HGet(ctx, FoldersKey(scope), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("folder %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	var folder domain.Folder
	if err := json.Unmarshal(data, &folder); err != nil {
		return nil, fmt.Errorf("failed to unmarshal folder: %w", err)
	}
	if folder.Scope != scope {
		return nil, fmt.Errorf("folder %s: %w", id, store.ErrNotFound)
	}
	return &folder, nil
}

// FindFolderByName looks up a folder by exact name within scope
func (s *Store) FindFolderByName(ctx context.Context, scope domain.Scope, name string) (*domain.Folder, error) {
	var folder domain.Folder
	if err := s.findByName(ctx, FolderNamesKey(scope), FoldersKey(scope), name, &folder); err != nil {
		return nil, fmt.Errorf("folder %q: %w", name, err)
	}
	if folder.Scope != scope {
		return nil, fmt.Errorf("folder %q: %w", name, store.ErrNotFound)
	}
	return &folder, nil
}

// CreateFolder stores a folder, returning store.ErrDuplicate if the name is taken in scope
func (s *Store) CreateFolder(ctx context.Context, folder *domain.Folder) error {
	if err := s.createNamed(ctx, FolderNamesKey(folder.Scope), FoldersKey(folder.Scope), folder.ID, folder.Name, folder); err != nil {
		return fmt.Errorf("folder %q: %w", folder.Name, err)
	}
	return nil
}

// createNamed writes the record under its ID, then claims the name with HSETNX.
// The record exists before the name points at it, so a reader that finds the
// name always finds the record. A lost claim removes the orphaned record.
func (s *Store) createNamed(ctx context.Context, namesKey, recordsKey, id, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}

	if err := s.client.HSet(ctx, recordsKey, id, data).Err(); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	claimed, err := s.client.HSetNX(ctx, namesKey, name, id).Result()
	if err != nil {
		return fmt.Errorf("failed to claim name: %w", err)
	}
	if !claimed {
		if err := s.client.HDel(ctx, recordsKey, id).Err(); err != nil {
			return fmt.Errorf("failed to discard duplicate: %w", err)
		}
		return store.ErrDuplicate
	}
	return nil
}

func (s *Store) findByName(ctx context.Context, namesKey, recordsKey, name string, v any) error {
	id, err := s.client.HGet(ctx, namesKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to resolve name: %w", err)
	}

	data, err := s.client.HGet(ctx, recordsKey, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to get record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal: %w", err)
	}
	return nil
}
