package organise

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/enrich"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/metrics"
	"github.com/MrSnakeDoc/curator/internal/store"
)

// BulkRunner processes candidates one at a time. A failing item is recorded
// in the report and never stops the batch.
type BulkRunner struct {
	selector  *Selector
	resources store.Resources
	fetcher   MetadataFetcher
	enricher  Enricher
	merger    *Merger
	resolver  *Resolver
	taxonomy  domain.Taxonomy
	log       logger.Logger
	metrics   *metrics.Collector
}

// RunnerDeps groups the collaborators of a BulkRunner.
type RunnerDeps struct {
	Store    store.Store
	Fetcher  MetadataFetcher
	Enricher Enricher
	Taxonomy domain.Taxonomy
	Logger   logger.Logger
	Metrics  *metrics.Collector
}

// NewBulkRunner wires a runner over d.
func NewBulkRunner(d RunnerDeps) *BulkRunner {
	return &BulkRunner{
		selector:  NewSelector(d.Store),
		resources: d.Store,
		fetcher:   d.Fetcher,
		enricher:  d.Enricher,
		merger:    NewMerger(d.Store, d.Taxonomy),
		resolver:  NewResolver(d.Store, d.Taxonomy.Palette, d.Logger, d.Metrics),
		taxonomy:  d.Taxonomy,
		log:       d.Logger,
		metrics:   d.Metrics,
	}
}

// Run executes one bulk pass. Only a failing candidate query returns an error.
func (b *BulkRunner) Run(ctx context.Context, scope domain.Scope, limit int) (*domain.BulkReport, error) {
	start := time.Now()
	candidates, err := b.selector.Select(ctx, scope, limit)
	if err != nil {
		return nil, err
	}

	log := b.log.With(logger.ScopeFields(scope.UserID, scope.Persona)...)
	log.Info("bulk pass started",
		logger.Int("candidates", len(candidates)),
		logger.Int("limit", limit))

	report := &domain.BulkReport{Items: make([]domain.ItemOutcome, 0, len(candidates))}
	for i, r := range candidates {
		item := b.process(ctx, r)
		report.Add(item)
		b.metrics.ItemProcessed(string(item.Outcome))

		fields := []logger.Field{
			logger.String("resource_id", r.ID),
			logger.Int("position", i+1),
			logger.Int("of", len(candidates)),
			logger.String("outcome", string(item.Outcome)),
		}
		if item.Success {
			log.Info("resource curated", append(fields, logger.Strings("updated", item.Updated))...)
		} else {
			log.Warn("resource not curated", append(fields, logger.String("reason", item.Error))...)
		}
	}

	log.Info("bulk pass finished",
		logger.Int("total", report.Total),
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed),
		logger.Duration("elapsed", time.Since(start)))
	return report, nil
}

// process runs the full pipeline for one candidate.
func (b *BulkRunner) process(ctx context.Context, r *domain.Resource) (item domain.ItemOutcome) {
	item = domain.ItemOutcome{ResourceID: r.ID, Title: r.BestKnownTitle()}
	defer func() {
		if p := recover(); p != nil {
			item = failed(item, fmt.Errorf("panic: %v", p))
		}
	}()

	meta := b.metadataFor(ctx, r)
	needs := domain.PlanNeeds(r, meta)

	if !needs.Any() {
		return b.persistMetadataOnly(ctx, r, meta, item)
	}

	var decision Decision
	result, err := b.enricher.Enrich(ctx, enrich.ResourceInput{
		ResourceID:  r.ID,
		URL:         r.URL,
		Kind:        r.Kind,
		Title:       firstNonBlank(meta.Title, r.BestKnownTitle()),
		Description: meta.Description,
		Needs:       needs,
		Scope:       r.Scope,
	})
	switch {
	case err != nil && r.Kind == domain.KindDocument && errors.Is(err, enrich.ErrUnavailable):
		decision = Decision{Set: Fallback(r, meta, b.taxonomy), Outcome: domain.OutcomeFallback}
	case err != nil:
		return failed(item, err)
	default:
		decision, err = b.merger.Merge(ctx, r, meta, result)
		if err != nil {
			return failed(item, err)
		}
	}

	if decision.Set.IsEmpty() {
		item.Outcome = decision.Outcome
		switch decision.Outcome {
		case domain.OutcomeLowConfidence:
			item.Error = "low confidence"
		default:
			item.Outcome = domain.OutcomeUnchanged
			item.Error = "no updates needed"
		}
		return item
	}

	patch, err := b.resolver.Resolve(ctx, r.Scope, decision.Set)
	if err != nil {
		return failed(item, err)
	}
	if err := b.resources.UpdateResource(ctx, r.Scope, r.ID, patch); err != nil {
		return failed(item, fmt.Errorf("failed to save resource: %w", err))
	}

	item.Outcome = decision.Outcome
	item.Success = true
	item.Updated = decision.Set.Fields()
	return item
}

// metadataFor fetches url resources and synthesises metadata for documents
// without a URL from their existing title.
func (b *BulkRunner) metadataFor(ctx context.Context, r *domain.Resource) domain.FetchedMetadata {
	if strings.TrimSpace(r.URL) != "" {
		return b.fetcher.Fetch(ctx, r.URL)
	}
	if r.Kind == domain.KindDocument {
		return domain.FetchedMetadata{Title: r.BestKnownTitle()}
	}
	return domain.FetchedMetadata{}
}

func (b *BulkRunner) persistMetadataOnly(ctx context.Context, r *domain.Resource, meta domain.FetchedMetadata, item domain.ItemOutcome) domain.ItemOutcome {
	var set domain.UpdateSet
	if !r.HasTitle() {
		set.Title = firstPresent(meta.Title)
	}
	if !r.HasDescription() {
		set.Description = firstPresent(meta.Description)
	}
	if set.IsEmpty() {
		item.Outcome = domain.OutcomeUnchanged
		item.Error = "already organised"
		return item
	}

	patch := domain.ResourcePatch{Title: set.Title, Description: set.Description}
	if err := b.resources.UpdateResource(ctx, r.Scope, r.ID, patch); err != nil {
		return failed(item, fmt.Errorf("failed to save resource: %w", err))
	}
	item.Outcome = domain.OutcomeMetadataOnly
	item.Success = true
	item.Updated = set.Fields()
	return item
}

func failed(item domain.ItemOutcome, err error) domain.ItemOutcome {
	item.Outcome = domain.OutcomeFailed
	item.Success = false
	item.Updated = nil
	item.Error = err.Error()
	return item
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
