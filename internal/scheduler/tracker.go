package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/metrics"
	"github.com/MrSnakeDoc/curator/internal/store"
)

// ErrShuttingDown is returned by Submit once Shutdown has been called.
var ErrShuttingDown = errors.New("tracker is shutting down")

// RunFunc executes one bulk pass.
type RunFunc func(ctx context.Context) (*domain.BulkReport, error)

// Job is a handle on a submitted bulk pass.
type Job struct {
	ID   string
	done chan struct{}

	mu     sync.RWMutex
	record domain.JobRecord
}

// Done is closed once the job reached a terminal state.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Record returns a snapshot of the job status.
func (j *Job) Record() domain.JobRecord {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.record
}

func (j *Job) update(fn func(r *domain.JobRecord)) domain.JobRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	fn(&j.record)
	return j.record
}

// Tracker runs bulk passes in the background and persists their status.
// Jobs run on the tracker's own context, so they outlive the request that
// submitted them.
type Tracker struct {
	jobs    store.Jobs
	logger  logger.Logger
	metrics *metrics.Collector

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewTracker creates a tracker persisting status records into jobs.
func NewTracker(jobs store.Jobs, log logger.Logger, m *metrics.Collector) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		jobs:    jobs,
		logger:  log,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit records a pending job and starts run in the background.
func (t *Tracker) Submit(ctx context.Context, scope domain.Scope, limit int, run RunFunc) (*Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrShuttingDown
	}

	job := &Job{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}
	job.record = domain.JobRecord{
		ID:        job.ID,
		Scope:     scope,
		Limit:     limit,
		State:     domain.JobPending,
		CreatedAt: time.Now().UTC(),
	}

	rec := job.Record()
	if err := t.jobs.SaveJob(ctx, &rec); err != nil {
		return nil, fmt.Errorf("failed to record job: %w", err)
	}

	t.wg.Add(1)
	go t.execute(job, run)

	t.logger.Info("bulk job submitted",
		logger.String("job_id", job.ID),
		logger.String("user_id", scope.UserID),
		logger.String("persona", scope.Persona),
		logger.Int("limit", limit))
	return job, nil
}

// Find returns the persisted status record of a job.
func (t *Tracker) Find(ctx context.Context, id string) (*domain.JobRecord, error) {
	return t.jobs.FindJob(ctx, id)
}

// Shutdown stops accepting jobs and waits for running ones. When ctx expires
// first, running jobs are cancelled.
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.cancel()
		return nil
	case <-ctx.Done():
		t.cancel()
		<-waited
		return ctx.Err()
	}
}

func (t *Tracker) execute(job *Job, run RunFunc) {
	defer t.wg.Done()
	defer close(job.done)

	// Status writes must land even while the base context is being cancelled.
	persistCtx := context.WithoutCancel(t.ctx)

	rec := job.update(func(r *domain.JobRecord) {
		r.State = domain.JobRunning
		r.StartedAt = time.Now().UTC()
	})
	t.save(persistCtx, rec)

	report, err := t.safeRun(run)

	rec = job.update(func(r *domain.JobRecord) {
		r.FinishedAt = time.Now().UTC()
		r.Report = report
		if err != nil {
			r.State = domain.JobFailed
			r.Error = err.Error()
			return
		}
		r.State = domain.JobCompleted
	})
	t.save(persistCtx, rec)
	t.metrics.BulkRunFinished(string(rec.State))

	if err != nil {
		t.logger.Error("bulk job failed",
			logger.String("job_id", job.ID),
			logger.Error(err))
		return
	}
	t.logger.Info("bulk job completed",
		logger.String("job_id", job.ID),
		logger.Int("total", report.Total),
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed),
		logger.Duration("elapsed", rec.FinishedAt.Sub(rec.StartedAt)))
}

func (t *Tracker) safeRun(run RunFunc) (report *domain.BulkReport, err error) {
	defer func() {
		if p := recover(); p != nil {
			report, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	report, err = run(t.ctx)
	if err == nil && report == nil {
		report = &domain.BulkReport{Items: []domain.ItemOutcome{}}
	}
	return report, err
}

func (t *Tracker) save(ctx context.Context, rec domain.JobRecord) {
	if err := t.jobs.SaveJob(ctx, &rec); err != nil {
		t.logger.Warn("failed to persist job status",
			logger.String("job_id", rec.ID),
			logger.String("state", string(rec.State)),
			logger.Error(err))
	}
}
