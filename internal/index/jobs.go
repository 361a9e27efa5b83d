package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/store"
)

// MemoryJobs keeps bulk-pass status records in process.
type MemoryJobs struct {
	mu   sync.RWMutex
	jobs map[string]domain.JobRecord
}

var _ store.Jobs = (*MemoryJobs)(nil)

// NewMemoryJobs creates an empty job table.
func NewMemoryJobs() *MemoryJobs {
	return &MemoryJobs{jobs: make(map[string]domain.JobRecord)}
}

// SaveJob inserts or replaces a record.
func (m *MemoryJobs) SaveJob(_ context.Context, job *domain.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

// FindJob returns a copy of the record.
func (m *MemoryJobs) FindJob(_ context.Context, id string) (*domain.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, store.ErrNotFound)
	}
	return &job, nil
}

// PruneJobs drops finished records that completed before the cutoff.
func (m *MemoryJobs) PruneJobs(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, job := range m.jobs {
		if job.State.Finished() && job.FinishedAt.Before(before) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed, nil
}
