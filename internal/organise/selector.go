package organise

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/store"
)

// curatedKinds are the resource types the pipeline works on.
var curatedKinds = []domain.Kind{domain.KindURL, domain.KindDocument}

// Selector finds url and document resources lacking a description or tags.
type Selector struct {
	resources store.Resources
}

// NewSelector creates a Selector.
func NewSelector(resources store.Resources) *Selector {
	return &Selector{resources: resources}
}

// Select returns at most limit candidates in scope. The limit is validated
// before the store is queried.
func (s *Selector) Select(ctx context.Context, scope domain.Scope, limit int) ([]*domain.Resource, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}
	candidates, err := s.resources.FindResources(ctx, store.ResourceFilter{
		Scope:      scope,
		Kinds:      curatedKinds,
		Unenriched: true,
	}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select candidates: %w", err)
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
