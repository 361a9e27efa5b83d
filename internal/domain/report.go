package domain

import "time"

// Outcome classifies what happened to one candidate during a bulk pass.
type Outcome string

const (
	// OutcomeEnriched means the reasoning answer was merged and persisted.
	OutcomeEnriched Outcome = "enriched"
	// OutcomeMetadataOnly means fetched metadata alone was persisted.
	OutcomeMetadataOnly Outcome = "metadata_only"
	// OutcomeFallback means local heuristics filled a document's fields.
	OutcomeFallback Outcome = "fallback"
	// OutcomeUnchanged means there was nothing to write.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeLowConfidence means the answer was discarded by the confidence gate.
	OutcomeLowConfidence Outcome = "low_confidence"
	// OutcomeFailed means the item raised an error.
	OutcomeFailed Outcome = "failed"
)

// ItemOutcome is the per-candidate entry of a BulkReport.
type ItemOutcome struct {
	ResourceID string   `json:"resourceId"`
	Title      string   `json:"title,omitempty"`
	Outcome    Outcome  `json:"outcome"`
	Success    bool     `json:"success"`
	Updated    []string `json:"updated,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// BulkReport aggregates one bulk pass.
type BulkReport struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Items     []ItemOutcome `json:"items"`
}

// Add records one outcome and updates the counters.
func (r *BulkReport) Add(item ItemOutcome) {
	r.Total++
	if item.Success {
		r.Succeeded++
	} else {
		r.Failed++
	}
	r.Items = append(r.Items, item)
}

// JobState is the lifecycle of a submitted bulk pass.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Finished reports whether the job reached a terminal state.
func (s JobState) Finished() bool {
	return s == JobCompleted || s == JobFailed
}

// JobRecord is the observable status of a fire-and-forget bulk pass.
type JobRecord struct {
	ID         string      `json:"id"`
	Scope      Scope       `json:"scope"`
	Limit      int         `json:"limit"`
	State      JobState    `json:"state"`
	Report     *BulkReport `json:"report,omitempty"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	StartedAt  time.Time   `json:"startedAt,omitempty"`
	FinishedAt time.Time   `json:"finishedAt,omitempty"`
}
