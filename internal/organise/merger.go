package organise

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/store"
)

// Decision is the merger's verdict for one resource.
type Decision struct {
	Set     domain.UpdateSet
	Outcome domain.Outcome
}

// Merger combines existing state, fetched metadata and the reasoning
// answer into a minimal update set. Existing data always wins.
type Merger struct {
	folders  store.Folders
	taxonomy domain.Taxonomy
}

// NewMerger creates a Merger. folders is read to check whether the
// resource sits in the default folder.
func NewMerger(folders store.Folders, tax domain.Taxonomy) *Merger {
	return &Merger{folders: folders, taxonomy: tax}
}

// Merge applies the confidence gate, then fills only empty fields.
func (m *Merger) Merge(ctx context.Context, r *domain.Resource, meta domain.FetchedMetadata, result domain.EnrichmentResult) (Decision, error) {
	if result.LowConfidence() {
		return Decision{Outcome: domain.OutcomeLowConfidence}, nil
	}

	if !result.HasUsableData() {
		if r.Kind == domain.KindDocument {
			return Decision{Set: Fallback(r, meta, m.taxonomy), Outcome: domain.OutcomeFallback}, nil
		}
		return Decision{Outcome: domain.OutcomeUnchanged}, nil
	}

	var set domain.UpdateSet

	if !r.HasTitle() {
		set.Title = firstPresent(meta.Title, result.SuggestedTitle)
	}
	if !r.HasDescription() {
		set.Description = firstPresent(meta.Description, result.Description)
	}

	if !r.HasTags() {
		set.TagNames = domain.CleanTagNames(result.Tags)
	}

	if category := strings.TrimSpace(result.Category); category != "" {
		replace, err := m.canReplaceFolder(ctx, r)
		if err != nil {
			return Decision{}, err
		}
		if replace {
			set.Category = category
		}
	}

	outcome := domain.OutcomeEnriched
	if set.IsEmpty() {
		outcome = domain.OutcomeUnchanged
	}
	return Decision{Set: set, Outcome: outcome}, nil
}

// canReplaceFolder reports whether the resource has no folder or sits in
// the default one. A folder the user chose is never overridden.
func (m *Merger) canReplaceFolder(ctx context.Context, r *domain.Resource) (bool, error) {
	if r.FolderID == "" {
		return true, nil
	}
	folder, err := m.folders.FindFolder(ctx, r.Scope, r.FolderID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up current folder: %w", err)
	}
	return folder.IsDefaultFolder(), nil
}

func firstPresent(values ...string) *string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return domain.Ptr(v)
		}
	}
	return nil
}
