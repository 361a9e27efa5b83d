package index

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/store"
)

// MemoryStore is an in-process document store implementing store.Store.
// It backs tests and the CURATOR_STORE=memory mode, and enforces the same
// (user, persona, name) uniqueness as the Redis store.
type MemoryStore struct {
	mu        sync.RWMutex
	resources map[string]*domain.Resource // ID -> Resource
	tags      map[string]*domain.Tag      // ID -> Tag
	folders   map[string]*domain.Folder   // ID -> Folder
	tagNames  map[nameKey]string          // (scope, name) -> tag ID
	dirNames  map[nameKey]string          // (scope, name) -> folder ID
}

type nameKey struct {
	scope domain.Scope
	name  string
}

var _ store.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources: make(map[string]*domain.Resource),
		tags:      make(map[string]*domain.Tag),
		folders:   make(map[string]*domain.Folder),
		tagNames:  make(map[nameKey]string),
		dirNames:  make(map[nameKey]string),
	}
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// ─────────────────────────────────────────────────────────────────
// Resources
// ─────────────────────────────────────────────────────────────────

// FindResources returns at most limit matching resources, oldest first.
func (m *MemoryStore) FindResources(_ context.Context, filter store.ResourceFilter, limit int) ([]*domain.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]*domain.Resource, 0)
	for _, r := range m.resources {
		if filter.Match(r) {
			matches = append(matches, cloneResource(r))
		}
	}
	sortResources(matches)

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// FindResource retrieves one resource in scope.
func (m *MemoryStore) FindResource(_ context.Context, scope domain.Scope, id string) (*domain.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resources[id]
	if !ok || r.Scope != scope {
		return nil, fmt.Errorf("resource %s: %w", id, store.ErrNotFound)
	}
	return cloneResource(r), nil
}

// CreateResource adds a resource.
func (m *MemoryStore) CreateResource(_ context.Context, r *domain.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.resources[r.ID]; exists {
		return fmt.Errorf("resource %s: %w", r.ID, store.ErrDuplicate)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.UpdatedAt = r.CreatedAt
	m.resources[r.ID] = cloneResource(r)
	return nil
}

// UpdateResource applies patch to one resource in scope.
func (m *MemoryStore) UpdateResource(_ context.Context, scope domain.Scope, id string, patch domain.ResourcePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.resources[id]
	if !ok || r.Scope != scope {
		return fmt.Errorf("resource %s: %w", id, store.ErrNotFound)
	}
	patch.Apply(r)
	r.UpdatedAt = time.Now()
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Tags
// ─────────────────────────────────────────────────────────────────

// FindTagByName looks up a tag by exact name in scope.
func (m *MemoryStore) FindTagByName(_ context.Context, scope domain.Scope, name string) (*domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.tagNames[nameKey{scope, name}]
	if !ok {
		return nil, fmt.Errorf("tag %q: %w", name, store.ErrNotFound)
	}
	t := *m.tags[id]
	return &t, nil
}

// CreateTag stores tag, rejecting a duplicate name in the same scope.
func (m *MemoryStore) CreateTag(_ context.Context, tag *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := nameKey{tag.Scope, tag.Name}
	if _, exists := m.tagNames[key]; exists {
		return fmt.Errorf("tag %q: %w", tag.Name, store.ErrDuplicate)
	}
	t := *tag
	m.tags[tag.ID] = &t
	m.tagNames[key] = tag.ID
	return nil
}

// TagCount returns the number of tags in scope.
func (m *MemoryStore) TagCount(scope domain.Scope) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, t := range m.tags {
		if t.Scope == scope {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────
// Folders
// ─────────────────────────────────────────────────────────────────

// FindFolder retrieves a folder by ID in scope.
func (m *MemoryStore) FindFolder(_ context.Context, scope domain.Scope, id string) (*domain.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.folders[id]
	if !ok || f.Scope != scope {
		return nil, fmt.Errorf("folder %s: %w", id, store.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

// FindFolderByName looks up a folder by exact name in scope.
func (m *MemoryStore) FindFolderByName(_ context.Context, scope domain.Scope, name string) (*domain.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.dirNames[nameKey{scope, name}]
	if !ok {
		return nil, fmt.Errorf("folder %q: %w", name, store.ErrNotFound)
	}
	cp := *m.folders[id]
	return &cp, nil
}

// CreateFolder stores folder, rejecting a duplicate name in the same scope.
func (m *MemoryStore) CreateFolder(_ context.Context, folder *domain.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := nameKey{folder.Scope, folder.Name}
	if _, exists := m.dirNames[key]; exists {
		return fmt.Errorf("folder %q: %w", folder.Name, store.ErrDuplicate)
	}
	cp := *folder
	m.folders[folder.ID] = &cp
	m.dirNames[key] = folder.ID
	return nil
}

// FolderCount returns the number of folders in scope.
func (m *MemoryStore) FolderCount(scope domain.Scope) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, f := range m.folders {
		if f.Scope == scope {
			n++
		}
	}
	return n
}

func cloneResource(r *domain.Resource) *domain.Resource {
	cp := *r
	cp.TagIDs = append([]string(nil), r.TagIDs...)
	if r.File != nil {
		f := *r.File
		cp.File = &f
	}
	return &cp
}

func sortResources(rs []*domain.Resource) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].CreatedAt.Before(rs[j].CreatedAt)
	})
}
