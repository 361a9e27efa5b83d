package organise

import (
	"context"
	"errors"
	"sync"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/enrich"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/store"
)

var (
	alice = domain.Scope{UserID: "alice", Persona: "student"}
	bob   = domain.Scope{UserID: "bob", Persona: "student"}

	errUnreachable = &enrich.RemoteError{
		Endpoint: enrich.EndpointResource,
		Kind:     enrich.KindConnectionRefused,
		Err:      errors.New("dial tcp 127.0.0.1:8081: connect: connection refused"),
	}
)

type fakeFetcher struct {
	pages map[string]domain.FetchedMetadata
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) domain.FetchedMetadata {
	return f.pages[rawURL]
}

type fakeEnricher struct {
	mu       sync.Mutex
	calls    []enrich.ResourceInput
	enrich   func(in enrich.ResourceInput) (domain.EnrichmentResult, error)
	form     func(rawURL string) (domain.EnrichmentResult, error)
	document func(doc enrich.Document) (domain.EnrichmentResult, error)
}

func (f *fakeEnricher) Enrich(_ context.Context, in enrich.ResourceInput) (domain.EnrichmentResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in)
	f.mu.Unlock()
	if f.enrich == nil {
		return domain.EnrichmentResult{}, errUnreachable
	}
	return f.enrich(in)
}

func (f *fakeEnricher) EnrichForForm(_ context.Context, rawURL string, _ domain.Scope) (domain.EnrichmentResult, error) {
	if f.form == nil {
		return domain.EnrichmentResult{}, errUnreachable
	}
	return f.form(rawURL)
}

func (f *fakeEnricher) AnalyzeDocument(_ context.Context, doc enrich.Document, _ domain.Scope) (domain.EnrichmentResult, error) {
	if f.document == nil {
		return domain.EnrichmentResult{}, errUnreachable
	}
	return f.document(doc)
}

func (f *fakeEnricher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newDeps(s store.Store, fetcher MetadataFetcher, enricher Enricher) RunnerDeps {
	return RunnerDeps{
		Store:    s,
		Fetcher:  fetcher,
		Enricher: enricher,
		Taxonomy: domain.DefaultTaxonomy(),
		Logger:   logger.Nop(),
	}
}

func confidence(v float64) *float64 {
	return &v
}
