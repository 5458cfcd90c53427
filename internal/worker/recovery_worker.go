package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/queue"
	"github.com/gamewatch/notifier/internal/repository"
)

// RecoveryWorker polls the database for jobs that were persisted but whose
// delivery was lost: the queue was full at ingest time, the process
// restarted with items still in the channel, or a worker died mid-job and
// left the row in processing. Such jobs would otherwise never see a worker
// again; once they are older than age, this poller puts them back on the
// queue. Re-running is safe: settled jobs are skipped and notification
// persistence dedupes on equivalence.
type RecoveryWorker struct {
	jobs     repository.JobRepository
	q        *queue.JobQueue
	interval time.Duration
	age      time.Duration
	logger   *zap.Logger
}

func NewRecoveryWorker(
	jobs repository.JobRepository,
	q *queue.JobQueue,
	interval, age time.Duration,
	logger *zap.Logger,
) *RecoveryWorker {
	return &RecoveryWorker{jobs: jobs, q: q, interval: interval, age: age, logger: logger}
}

// Run ticks every interval and re-enqueues any stranded jobs.
// Stops cleanly when ctx is cancelled.
func (rw *RecoveryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("recovery worker started",
		zap.Duration("interval", rw.interval), zap.Duration("age", rw.age))

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("recovery worker stopping")
			return
		case <-ticker.C:
			rw.poll(ctx)
		}
	}
}

func (rw *RecoveryWorker) poll(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-rw.age)
	stranded, err := rw.jobs.FindStuckDispatch(ctx, cutoff)
	if err != nil {
		rw.logger.Error("recovery poll error", zap.Error(err))
		return
	}

	for _, j := range stranded {
		if err := rw.q.Enqueue(queue.Item{JobID: j.ID, SourceID: j.SourceID}); err != nil {
			rw.logger.Warn("could not re-enqueue stranded job",
				zap.String("id", j.ID), zap.Error(err))
			continue
		}

		if err := rw.jobs.UpdateStatus(ctx, j.ID, domain.JobStatusQueued); err != nil {
			rw.logger.Error("failed to update status after recovery",
				zap.String("id", j.ID), zap.Error(err))
		}
	}

	if len(stranded) > 0 {
		rw.logger.Info("re-enqueued stranded jobs", zap.Int("count", len(stranded)))
	}
}
