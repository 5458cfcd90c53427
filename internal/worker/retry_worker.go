package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/queue"
	"github.com/gamewatch/notifier/internal/repository"
)

// RetryWorker polls the database for failed jobs whose next_attempt_at is in
// the past and re-enqueues them.
//
// This DB-backed approach means redelivery survives restarts: scheduled
// attempt times are persisted, not held in memory.
type RetryWorker struct {
	jobs     repository.JobRepository
	q        *queue.JobQueue
	interval time.Duration
	logger   *zap.Logger
}

func NewRetryWorker(
	jobs repository.JobRepository,
	q *queue.JobQueue,
	interval time.Duration,
	logger *zap.Logger,
) *RetryWorker {
	return &RetryWorker{jobs: jobs, q: q, interval: interval, logger: logger}
}

// Run ticks every interval and re-enqueues any due redeliveries.
// Stops cleanly when ctx is cancelled.
func (rw *RetryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("retry worker started", zap.Duration("interval", rw.interval))

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("retry worker stopping")
			return
		case <-ticker.C:
			rw.poll(ctx)
		}
	}
}

func (rw *RetryWorker) poll(ctx context.Context) {
	due, err := rw.jobs.FindDueRetries(ctx)
	if err != nil {
		rw.logger.Error("retry poll error", zap.Error(err))
		return
	}

	for _, j := range due {
		if err := rw.q.Enqueue(queue.Item{JobID: j.ID, SourceID: j.SourceID}); err != nil {
			rw.logger.Warn("could not re-enqueue job",
				zap.String("id", j.ID), zap.Error(err))
			continue
		}

		if err := rw.jobs.UpdateStatus(ctx, j.ID, domain.JobStatusQueued); err != nil {
			rw.logger.Error("failed to update status after re-enqueue",
				zap.String("id", j.ID), zap.Error(err))
		}
	}

	if len(due) > 0 {
		rw.logger.Info("re-enqueued due redeliveries", zap.Int("count", len(due)))
	}
}
