package organise

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/enrich"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/metadata"
	"golang.org/x/sync/errgroup"
)

// URLSuggestion answers an interactive "autofill from URL" request.
// Nil fields mean nothing could be suggested.
type URLSuggestion struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	Category    *string  `json:"category"`
}

// DocumentSuggestion answers an interactive "autofill from file" request.
type DocumentSuggestion struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    *string  `json:"category"`
}

// Prefiller serves single-item form completion. It never persists anything.
type Prefiller struct {
	fetcher  MetadataFetcher
	enricher Enricher
	taxonomy domain.Taxonomy
	log      logger.Logger
}

// NewPrefiller creates a Prefiller.
func NewPrefiller(fetcher MetadataFetcher, enricher Enricher, tax domain.Taxonomy, log logger.Logger) *Prefiller {
	return &Prefiller{fetcher: fetcher, enricher: enricher, taxonomy: tax, log: log}
}

// FromURL fetches page metadata and a full reasoning suggestion concurrently.
// Title prefers the page, description prefers the reasoning answer. A failed
// reasoning call still yields whatever the page provided.
func (p *Prefiller) FromURL(ctx context.Context, rawURL string, scope domain.Scope) (URLSuggestion, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return URLSuggestion{}, ErrMissingInput
	}
	if _, err := metadata.ValidateURL(rawURL); err != nil {
		return URLSuggestion{}, ErrInvalidURL
	}

	var meta domain.FetchedMetadata
	var result domain.EnrichmentResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta = p.fetcher.Fetch(gctx, rawURL)
		return nil
	})
	g.Go(func() error {
		r, err := p.enricher.EnrichForForm(gctx, rawURL, scope)
		if err != nil {
			p.log.Warn("url prefill falling back to page metadata",
				logger.String("url", rawURL),
				logger.String("user_id", scope.UserID),
				logger.String("persona", scope.Persona),
				logger.Error(err))
			return nil
		}
		result = r
		return nil
	})
	_ = g.Wait()

	return URLSuggestion{
		Title:       firstPresent(meta.Title, result.SuggestedTitle),
		Description: firstPresent(result.Description, meta.Description),
		Tags:        capTags(result.Tags, SuggestionTagCount),
		Category:    firstPresent(result.Category),
	}, nil
}

// FromDocument asks the reasoning service to analyse the file and falls back
// to filename heuristics on any failure. Only the filename is required: an
// empty file skips the service and gets the filename suggestion directly.
func (p *Prefiller) FromDocument(ctx context.Context, doc enrich.Document, scope domain.Scope) (DocumentSuggestion, error) {
	if strings.TrimSpace(doc.Filename) == "" {
		return DocumentSuggestion{}, ErrMissingInput
	}

	defaultDescription := describeExtension(doc.Filename)
	if len(doc.Content) == 0 {
		return p.filenameSuggestion(doc.Filename, defaultDescription), nil
	}

	result, err := p.enricher.AnalyzeDocument(ctx, doc, scope)
	if err != nil {
		p.log.Warn("document prefill using filename heuristics",
			logger.String("filename", doc.Filename),
			logger.String("user_id", scope.UserID),
			logger.String("persona", scope.Persona),
			logger.Error(err))
		return p.filenameSuggestion(doc.Filename, defaultDescription), nil
	}

	description := defaultDescription
	if d := firstPresent(result.Description); d != nil {
		description = *d
	}
	return DocumentSuggestion{
		Description: description,
		Tags:        capTags(result.Tags, SuggestionTagCount),
		Category:    firstPresent(result.Category),
	}, nil
}

func (p *Prefiller) filenameSuggestion(filename, description string) DocumentSuggestion {
	return DocumentSuggestion{
		Description: description,
		Tags:        p.taxonomy.FilenameKeywords(filename, SuggestionTagCount),
		Category:    domain.Ptr(p.taxonomy.CategoryForExtension(domain.Extension(filename))),
	}
}

// describeExtension renders "{EXT} document", or "Document" without an extension.
func describeExtension(filename string) string {
	ext := domain.Extension(filename)
	if ext == "" {
		return "Document"
	}
	return strings.ToUpper(ext) + " document"
}

func capTags(tags []string, max int) []string {
	tags = domain.CleanTagNames(tags)
	if len(tags) > max {
		tags = tags[:max]
	}
	if tags == nil {
		return []string{}
	}
	return tags
}
