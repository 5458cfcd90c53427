package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/queue"
	"github.com/gamewatch/notifier/internal/repository"
)

// IngestService accepts jobs from the upstream sync process: validate the
// payload, persist the job row, hand an item to the dispatch queue. The row
// is written before the enqueue so a full queue or a crash between the two
// steps loses nothing; the recovery poller re-dispatches persisted jobs.
type IngestService struct {
	jobs        repository.JobRepository
	q           *queue.JobQueue
	maxAttempts int
	logger      *zap.Logger
}

func NewIngestService(
	jobs repository.JobRepository,
	q *queue.JobQueue,
	maxAttempts int,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{jobs: jobs, q: q, maxAttempts: maxAttempts, logger: logger}
}

// Enqueue validates, persists, and dispatches a create-notifications job.
// Validation failures are schema errors: the job is never persisted, since
// redelivering a structurally invalid message cannot fix it.
func (s *IngestService) Enqueue(ctx context.Context, req domain.CreateNotificationsRequest) (*domain.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	j := &domain.Job{
		ID:           uuid.New().String(),
		SourceID:     req.SourceID,
		ExistingData: req.ExistingGameData,
		ResolvedData: req.ResolvedGameData,
		Status:       domain.JobStatusPending,
		MaxAttempts:  s.maxAttempts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	if err := s.q.Enqueue(queue.Item{JobID: j.ID, SourceID: j.SourceID}); err != nil {
		// Row is persisted; the recovery worker re-enqueues it later.
		s.logger.Warn("queue full: job will be recovered",
			zap.String("id", j.ID), zap.Error(err))
		return j, nil
	}

	if err := s.jobs.UpdateStatus(ctx, j.ID, domain.JobStatusQueued); err != nil {
		s.logger.Error("failed to update status to queued",
			zap.String("id", j.ID), zap.Error(err))
		return j, nil
	}
	j.Status = domain.JobStatusQueued
	return j, nil
}
