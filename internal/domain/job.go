package domain

import (
	"encoding/json"
	"time"
)

// JobStatus tracks the lifecycle of a create-notifications job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusDeadLetter JobStatus = "dead_letter"
)

// Job is one message on the create-notifications queue. The database row is
// the authoritative record; the in-memory queue only carries its ID, so a
// restart loses nothing but the dispatch and the recovery poller re-enqueues
// whatever was in flight.
type Job struct {
	ID            string          `json:"id"`
	SourceID      string          `json:"source_id"`
	ExistingData  json.RawMessage `json:"existing_data,omitempty"`
	ResolvedData  json.RawMessage `json:"resolved_data"`
	Status        JobStatus       `json:"status"`
	Attempts      int             `json:"attempts"`
	MaxAttempts   int             `json:"max_attempts"`
	NextAttemptAt *time.Time      `json:"next_attempt_at,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// HasExistingData reports whether the job carries a previous snapshot.
// A JSON null counts as absent: the upstream sync sends null on the very
// first resolve of a source.
func (j *Job) HasExistingData() bool {
	return len(j.ExistingData) > 0 && string(j.ExistingData) != "null"
}

// CreateNotificationsRequest is the inbound job payload.
type CreateNotificationsRequest struct {
	SourceID         string          `json:"sourceId"`
	ExistingGameData json.RawMessage `json:"existingGameData,omitempty"`
	ResolvedGameData json.RawMessage `json:"resolvedGameData"`
}

func (r *CreateNotificationsRequest) Validate() error {
	if r.SourceID == "" {
		return ErrInvalidSourceID
	}
	if len(r.ResolvedGameData) == 0 || string(r.ResolvedGameData) == "null" {
		return ErrMissingResolvedData
	}
	if !json.Valid(r.ResolvedGameData) {
		return ErrMalformedGameData
	}
	if len(r.ExistingGameData) > 0 && !json.Valid(r.ExistingGameData) {
		return ErrMalformedGameData
	}
	return nil
}
