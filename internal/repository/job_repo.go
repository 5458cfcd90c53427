package repository

import (
	"context"
	"time"

	"github.com/gamewatch/notifier/internal/domain"
)

// JobRepository defines the persisted side of the job queue. A job row is
// created before the in-memory enqueue and updated on every state
// transition, so the delivery contract (redelivery with backoff, dead
// letter after the attempt ceiling) survives process restarts.
type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)

	UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error
	MarkCompleted(ctx context.Context, id string) error

	// ScheduleRetry records a failed attempt and when redelivery is due.
	ScheduleRetry(ctx context.Context, id string, attempts int, nextAttempt time.Time, errMsg string) error

	// MarkDeadLetter removes a job from active processing for good.
	MarkDeadLetter(ctx context.Context, id string, errMsg string) error

	// FindDueRetries returns failed jobs whose next_attempt_at has passed
	// and that still have attempts left.
	FindDueRetries(ctx context.Context) ([]*domain.Job, error)

	// FindStuckDispatch returns jobs sitting in pending, queued or
	// processing longer than cutoff: their channel item was lost (queue
	// full at ingest, a restart, or a worker that died mid-job) and they
	// need re-enqueueing. Re-running a processing job is safe because
	// notification persistence dedupes on equivalence.
	FindStuckDispatch(ctx context.Context, cutoff time.Time) ([]*domain.Job, error)
}
