package organise

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/enrich"
	"github.com/MrSnakeDoc/curator/internal/index"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/scheduler"
)

func newService(t *testing.T, s *index.MemoryStore, enricher Enricher) *Service {
	t.Helper()
	tracker := scheduler.NewTracker(index.NewMemoryJobs(), logger.Nop(), nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracker.Shutdown(ctx)
	})
	return NewService(newDeps(s, &fakeFetcher{}, enricher), tracker)
}

func TestPreviewCandidateCount(t *testing.T) {
	ctx := context.Background()
	s := index.NewMemoryStore()
	for i := 0; i < 7; i++ {
		require.NoError(t, s.CreateResource(ctx, &domain.Resource{ID: fmt.Sprintf("a%d", i), Scope: alice, Kind: domain.KindURL}))
	}
	require.NoError(t, s.CreateResource(ctx, &domain.Resource{ID: "b", Scope: bob, Kind: domain.KindURL}))
	require.NoError(t, s.CreateResource(ctx, &domain.Resource{
		ID: "done", Scope: alice, Kind: domain.KindURL, Description: "d", TagIDs: []string{"t"},
	}))

	svc := newService(t, s, &fakeEnricher{})

	n, err := svc.PreviewCandidateCount(ctx, alice, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = svc.PreviewCandidateCount(ctx, alice, 100)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = svc.PreviewCandidateCount(ctx, alice, 200)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestStartBulkPassCompletes(t *testing.T) {
	ctx := context.Background()
	s := index.NewMemoryStore()
	require.NoError(t, s.CreateResource(ctx, &domain.Resource{
		ID: "d1", Scope: alice, Kind: domain.KindDocument, Title: "Q3_Report_Final.pdf",
	}))

	svc := newService(t, s, &fakeEnricher{})
	job, err := svc.StartBulkPass(ctx, alice, DefaultLimit)
	require.NoError(t, err)

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("bulk pass did not finish")
	}

	rec, err := svc.Job(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, rec.State)
	require.NotNil(t, rec.Report)
	assert.Equal(t, 1, rec.Report.Succeeded)

	got, err := s.FindResource(ctx, alice, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Document: Q3_Report_Final.pdf", got.Description)
}

func TestStartBulkPassRejectsLimit(t *testing.T) {
	svc := newService(t, index.NewMemoryStore(), &fakeEnricher{})
	_, err := svc.StartBulkPass(context.Background(), alice, 101)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestServiceWithoutTracker(t *testing.T) {
	ctx := context.Background()
	s := index.NewMemoryStore()
	svc := NewService(newDeps(s, &fakeFetcher{}, &fakeEnricher{}), nil)

	_, err := svc.StartBulkPass(ctx, alice, 10)
	assert.ErrorIs(t, err, ErrNoTracker)

	report, err := svc.RunBulkPass(ctx, alice, 10)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
}

func TestServicePrefillDelegates(t *testing.T) {
	svc := newService(t, index.NewMemoryStore(), &fakeEnricher{})

	doc, err := svc.PrefillFromDocument(context.Background(), enrich.Document{Filename: "slides.pptx", Content: []byte("x")}, alice)
	require.NoError(t, err)
	assert.Equal(t, "PPTX document", doc.Description)
	assert.Equal(t, "presentations", *doc.Category)

	_, err = svc.PrefillFromURL(context.Background(), "", alice)
	assert.ErrorIs(t, err, ErrMissingInput)
}
