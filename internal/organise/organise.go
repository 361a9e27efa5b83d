// Package organise is the curation pipeline: it selects under-described
// resources, gathers cheap metadata, asks the reasoning service only for
// what is still missing, and merges the answer without overwriting
// anything the user entered.
package organise

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/enrich"
)

const (
	// MinLimit and MaxLimit bound a bulk pass or preview.
	MinLimit = 1
	MaxLimit = 100

	// DefaultLimit is used when the caller supplies none.
	DefaultLimit = 50

	// FallbackTagCount caps tags derived from a title.
	FallbackTagCount = 3

	// SuggestionTagCount caps tags returned by form prefill.
	SuggestionTagCount = 5
)

var (
	// ErrInvalidLimit is returned for a limit outside [MinLimit, MaxLimit].
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")

	// ErrMissingInput is returned when a required URL or file is absent.
	ErrMissingInput = errors.New("missing required input")

	// ErrInvalidURL is returned when a prefill URL is not absolute http(s).
	ErrInvalidURL = errors.New("invalid URL")
)

// MetadataFetcher extracts best-effort metadata from a page. It never fails.
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) domain.FetchedMetadata
}

// Enricher is the reasoning service contract.
type Enricher interface {
	Enrich(ctx context.Context, in enrich.ResourceInput) (domain.EnrichmentResult, error)
	EnrichForForm(ctx context.Context, rawURL string, scope domain.Scope) (domain.EnrichmentResult, error)
	AnalyzeDocument(ctx context.Context, doc enrich.Document, scope domain.Scope) (domain.EnrichmentResult, error)
}

// ValidateLimit rejects limits outside [MinLimit, MaxLimit].
func ValidateLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return ErrInvalidLimit
	}
	return nil
}
