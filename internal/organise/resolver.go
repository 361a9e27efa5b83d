package organise

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/metrics"
	"github.com/MrSnakeDoc/curator/internal/store"
	"github.com/google/uuid"
)

// TaxonomyStore is the tag and folder side of the document store.
type TaxonomyStore interface {
	store.Tags
	store.Folders
}

// Resolver turns staged tag and category names into persisted identifiers,
// creating what is missing. Creation relies on the store's (user, persona,
// name) uniqueness: losing a race re-reads the winner.
type Resolver struct {
	store   TaxonomyStore
	palette domain.Palette
	log     logger.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewResolver creates a Resolver. metrics may be nil.
func NewResolver(s TaxonomyStore, palette domain.Palette, log logger.Logger, m *metrics.Collector) *Resolver {
	return &Resolver{
		store:   s,
		palette: palette,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Resolve converts set into a patch ready for persistence.
func (r *Resolver) Resolve(ctx context.Context, scope domain.Scope, set domain.UpdateSet) (domain.ResourcePatch, error) {
	patch := domain.ResourcePatch{
		Title:       set.Title,
		Description: set.Description,
	}

	if len(set.TagNames) > 0 {
		ids := make([]string, 0, len(set.TagNames))
		seen := make(map[string]bool, len(set.TagNames))
		for _, name := range set.TagNames {
			tag, err := r.ResolveTag(ctx, scope, name)
			if err != nil {
				return domain.ResourcePatch{}, err
			}
			if !seen[tag.ID] {
				seen[tag.ID] = true
				ids = append(ids, tag.ID)
			}
		}
		patch.TagIDs = ids
	}

	if set.Category != "" {
		folder, err := r.ResolveFolder(ctx, scope, set.Category)
		if err != nil {
			return domain.ResourcePatch{}, err
		}
		patch.FolderID = domain.Ptr(folder.ID)
	}
	return patch, nil
}

// ResolveTag finds the tag named name in scope, creating it if absent.
func (r *Resolver) ResolveTag(ctx context.Context, scope domain.Scope, name string) (*domain.Tag, error) {
	tag, err := r.store.FindTagByName(ctx, scope, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to find tag %q: %w", name, err)
	}

	tag = &domain.Tag{
		ID:        uuid.NewString(),
		Scope:     scope,
		Name:      name,
		Color:     r.palette.ColorFor(name),
		CreatedAt: r.now(),
	}
	switch err := r.store.CreateTag(ctx, tag); {
	case err == nil:
		r.metrics.TaxonomyCreated("tag")
		r.log.Info("created tag",
			logger.String("tag", name),
			logger.String("color", tag.Color),
			logger.String("user_id", scope.UserID),
			logger.String("persona", scope.Persona))
		return tag, nil
	case errors.Is(err, store.ErrDuplicate):
		existing, err := r.store.FindTagByName(ctx, scope, name)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read tag %q after conflict: %w", name, err)
		}
		return existing, nil
	default:
		return nil, fmt.Errorf("failed to create tag %q: %w", name, err)
	}
}

// ResolveFolder finds the folder named name in scope, creating it if absent.
func (r *Resolver) ResolveFolder(ctx context.Context, scope domain.Scope, name string) (*domain.Folder, error) {
	folder, err := r.store.FindFolderByName(ctx, scope, name)
	if err == nil {
		return folder, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to find folder %q: %w", name, err)
	}

	folder = &domain.Folder{
		ID:          uuid.NewString(),
		Scope:       scope,
		Name:        name,
		Description: "Auto-organised folder for " + name,
		Color:       r.palette.ColorFor(name),
		Icon:        "folder",
		IsDefault:   false,
		CreatedAt:   r.now(),
	}
	switch err := r.store.CreateFolder(ctx, folder); {
	case err == nil:
		r.metrics.TaxonomyCreated("folder")
		r.log.Info("created folder",
			logger.String("folder", name),
			logger.String("color", folder.Color),
			logger.String("user_id", scope.UserID),
			logger.String("persona", scope.Persona))
		return folder, nil
	case errors.Is(err, store.ErrDuplicate):
		existing, err := r.store.FindFolderByName(ctx, scope, name)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read folder %q after conflict: %w", name, err)
		}
		return existing, nil
	default:
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}
}
