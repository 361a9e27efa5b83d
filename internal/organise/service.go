package organise

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/enrich"
	"github.com/MrSnakeDoc/curator/internal/scheduler"
)

// ErrNoTracker is returned by StartBulkPass on a service built without a job tracker.
var ErrNoTracker = errors.New("background jobs are not available")

// Service exposes the pipeline's upward operations.
type Service struct {
	runner   *BulkRunner
	selector *Selector
	prefill  *Prefiller
	tracker  *scheduler.Tracker
}

// NewService wires the pipeline. tracker may be nil for synchronous callers.
func NewService(d RunnerDeps, tracker *scheduler.Tracker) *Service {
	return &Service{
		runner:   NewBulkRunner(d),
		selector: NewSelector(d.Store),
		prefill:  NewPrefiller(d.Fetcher, d.Enricher, d.Taxonomy, d.Logger),
		tracker:  tracker,
	}
}

// StartBulkPass validates limit and runs a bulk pass in the background.
// The returned job's Done channel closes when the pass finishes.
func (s *Service) StartBulkPass(ctx context.Context, scope domain.Scope, limit int) (*scheduler.Job, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}
	if s.tracker == nil {
		return nil, ErrNoTracker
	}
	return s.tracker.Submit(ctx, scope, limit, func(runCtx context.Context) (*domain.BulkReport, error) {
		return s.runner.Run(runCtx, scope, limit)
	})
}

// RunBulkPass runs a bulk pass and waits for its report.
func (s *Service) RunBulkPass(ctx context.Context, scope domain.Scope, limit int) (*domain.BulkReport, error) {
	return s.runner.Run(ctx, scope, limit)
}

// Job returns the status record of a background pass.
func (s *Service) Job(ctx context.Context, id string) (*domain.JobRecord, error) {
	if s.tracker == nil {
		return nil, ErrNoTracker
	}
	return s.tracker.Find(ctx, id)
}

// PreviewCandidateCount reports how many resources a pass with limit would touch.
func (s *Service) PreviewCandidateCount(ctx context.Context, scope domain.Scope, limit int) (int, error) {
	candidates, err := s.selector.Select(ctx, scope, limit)
	if err != nil {
		return 0, err
	}
	return len(candidates), nil
}

// PrefillFromURL suggests form fields for a URL.
func (s *Service) PrefillFromURL(ctx context.Context, rawURL string, scope domain.Scope) (URLSuggestion, error) {
	return s.prefill.FromURL(ctx, rawURL, scope)
}

// PrefillFromDocument suggests form fields for an uploaded file.
func (s *Service) PrefillFromDocument(ctx context.Context, doc enrich.Document, scope domain.Scope) (DocumentSuggestion, error) {
	return s.prefill.FromDocument(ctx, doc, scope)
}
