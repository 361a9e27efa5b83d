package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/index"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/metrics"
)

var scope = domain.Scope{UserID: "u1", Persona: "student"}

func newTracker(t *testing.T) (*Tracker, *index.MemoryJobs) {
	t.Helper()
	jobs := index.NewMemoryJobs()
	tr := NewTracker(jobs, logger.Nop(), metrics.NewCollector())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tr.Shutdown(ctx)
	})
	return tr, jobs
}

func waitDone(t *testing.T, job *Job) {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("job %s did not finish", job.ID)
	}
}

func TestTrackerCompletesJob(t *testing.T) {
	tr, jobs := newTracker(t)
	release := make(chan struct{})

	job, err := tr.Submit(context.Background(), scope, 10, func(ctx context.Context) (*domain.BulkReport, error) {
		<-release
		report := &domain.BulkReport{}
		report.Add(domain.ItemOutcome{ResourceID: "r1", Outcome: domain.OutcomeEnriched, Success: true})
		report.Add(domain.ItemOutcome{ResourceID: "r2", Outcome: domain.OutcomeFailed, Error: "boom"})
		return report, nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	select {
	case <-job.Done():
		t.Fatal("job finished before its run returned")
	default:
	}

	close(release)
	waitDone(t, job)

	rec, err := tr.Find(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, rec.State)
	assert.Equal(t, scope, rec.Scope)
	assert.Equal(t, 10, rec.Limit)
	require.NotNil(t, rec.Report)
	assert.Equal(t, 2, rec.Report.Total)
	assert.Equal(t, 1, rec.Report.Succeeded)
	assert.Equal(t, 1, rec.Report.Failed)
	assert.False(t, rec.FinishedAt.Before(rec.StartedAt))

	stored, err := jobs.FindJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.State, stored.State)
	assert.Equal(t, job.Record().State, domain.JobCompleted)
}

func TestTrackerRecordsFailure(t *testing.T) {
	tr, _ := newTracker(t)

	job, err := tr.Submit(context.Background(), scope, 5, func(context.Context) (*domain.BulkReport, error) {
		return nil, errors.New("failed to select candidates: store down")
	})
	require.NoError(t, err)
	waitDone(t, job)

	rec, err := tr.Find(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, rec.State)
	assert.Contains(t, rec.Error, "store down")
	assert.Nil(t, rec.Report)
}

func TestTrackerRecoversPanic(t *testing.T) {
	tr, _ := newTracker(t)

	job, err := tr.Submit(context.Background(), scope, 5, func(context.Context) (*domain.BulkReport, error) {
		panic("unexpected")
	})
	require.NoError(t, err)
	waitDone(t, job)

	rec := job.Record()
	assert.Equal(t, domain.JobFailed, rec.State)
	assert.Equal(t, "panic: unexpected", rec.Error)
}

func TestTrackerJobOutlivesSubmitContext(t *testing.T) {
	tr, _ := newTracker(t)
	submitCtx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	job, err := tr.Submit(submitCtx, scope, 5, func(ctx context.Context) (*domain.BulkReport, error) {
		close(started)
		<-submitCtx.Done()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &domain.BulkReport{}, nil
	})
	require.NoError(t, err)

	<-started
	cancel()
	waitDone(t, job)
	assert.Equal(t, domain.JobCompleted, job.Record().State)
}

func TestTrackerShutdownRejectsNewJobs(t *testing.T) {
	tr, _ := newTracker(t)
	require.NoError(t, tr.Shutdown(context.Background()))

	_, err := tr.Submit(context.Background(), scope, 5, func(context.Context) (*domain.BulkReport, error) {
		return &domain.BulkReport{}, nil
	})
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestTrackerShutdownCancelsAfterDeadline(t *testing.T) {
	tr, _ := newTracker(t)

	job, err := tr.Submit(context.Background(), scope, 5, func(ctx context.Context) (*domain.BulkReport, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tr.Shutdown(ctx), context.DeadlineExceeded)

	waitDone(t, job)
	assert.Equal(t, domain.JobFailed, job.Record().State)
}
