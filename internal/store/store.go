// Package store defines the document store contract consumed by the
// organise pipeline. Every operation is scoped to a (user, persona) pair.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches nothing in scope.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a create violates the
	// (user, persona, name) uniqueness constraint.
	ErrDuplicate = errors.New("duplicate name in scope")
)

// ResourceFilter selects resources within one scope.
type ResourceFilter struct {
	Scope domain.Scope

	// Kinds restricts the resource type; empty means any.
	Kinds []domain.Kind

	// Unenriched keeps only resources lacking a description or tags.
	Unenriched bool
}

// Match reports whether r satisfies the filter.
func (f ResourceFilter) Match(r *domain.Resource) bool {
	if r.Scope != f.Scope {
		return false
	}
	if len(f.Kinds) > 0 {
		ok := false
		for _, k := range f.Kinds {
			if r.Kind == k {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Unenriched && r.HasDescription() && r.HasTags() {
		return false
	}
	return true
}

// Resources is the resource side of the document store.
type Resources interface {
	// FindResources returns at most limit resources matching the filter,
	// oldest first.
	FindResources(ctx context.Context, filter ResourceFilter, limit int) ([]*domain.Resource, error)
	FindResource(ctx context.Context, scope domain.Scope, id string) (*domain.Resource, error)
	CreateResource(ctx context.Context, r *domain.Resource) error
	// UpdateResource applies the non-nil fields of patch to one resource.
	UpdateResource(ctx context.Context, scope domain.Scope, id string, patch domain.ResourcePatch) error
}

// Tags is the tag side of the document store.
type Tags interface {
	FindTagByName(ctx context.Context, scope domain.Scope, name string) (*domain.Tag, error)
	// CreateTag returns ErrDuplicate when the name already exists in scope.
	CreateTag(ctx context.Context, tag *domain.Tag) error
}

// Folders is the folder side of the document store.
type Folders interface {
	FindFolder(ctx context.Context, scope domain.Scope, id string) (*domain.Folder, error)
	FindFolderByName(ctx context.Context, scope domain.Scope, name string) (*domain.Folder, error)
	// CreateFolder returns ErrDuplicate when the name already exists in scope.
	CreateFolder(ctx context.Context, folder *domain.Folder) error
}

// Store is the full document store.
type Store interface {
	Resources
	Tags
	Folders
	Ping(ctx context.Context) error
}

// Jobs persists bulk-pass status records.
type Jobs interface {
	SaveJob(ctx context.Context, job *domain.JobRecord) error
	FindJob(ctx context.Context, id string) (*domain.JobRecord, error)
	// PruneJobs removes finished records older than before and returns how many went.
	PruneJobs(ctx context.Context, before time.Time) (int, error)
}
