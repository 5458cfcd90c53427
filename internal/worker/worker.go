package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/queue"
	"github.com/gamewatch/notifier/internal/report"
	"github.com/gamewatch/notifier/internal/repository"
	"github.com/gamewatch/notifier/internal/service"
)

// Job outcomes reported through the metric hooks.
const (
	OutcomeCompleted  = "completed"
	OutcomeRetried    = "retried"
	OutcomeDeadLetter = "dead_letter"
)

// Worker is a single goroutine that continuously pulls items from the job
// queue, serializes per source, invokes the notification service, and
// records the job's fate: completed, scheduled for redelivery, or dead
// lettered.
type Worker struct {
	id       int
	q        *queue.JobQueue
	jobs     repository.JobRepository
	svc      *service.NotificationService
	locks    *KeyedLock
	reporter report.Reporter
	backoff  []time.Duration
	logger   *zap.Logger

	// Hooks for metrics, injected by the pool so the worker stays
	// metrics-agnostic.
	onProcessed func(outcome string, latency time.Duration)
	onNotified  func(t domain.NotificationType)
}

// NewWorker constructs a worker. onProcessed and onNotified are optional
// (nil = no-op).
func NewWorker(
	id int,
	q *queue.JobQueue,
	jobs repository.JobRepository,
	svc *service.NotificationService,
	locks *KeyedLock,
	reporter report.Reporter,
	backoff []time.Duration,
	logger *zap.Logger,
	onProcessed func(string, time.Duration),
	onNotified func(domain.NotificationType),
) *Worker {
	if onProcessed == nil {
		onProcessed = func(string, time.Duration) {}
	}
	if onNotified == nil {
		onNotified = func(domain.NotificationType) {}
	}
	return &Worker{
		id: id, q: q, jobs: jobs, svc: svc,
		locks: locks, reporter: reporter, backoff: backoff, logger: logger,
		onProcessed: onProcessed, onNotified: onNotified,
	}
}

// Run blocks until ctx is cancelled, processing one queue item per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", zap.Int("id", w.id))
	for {
		item, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, item)
	}
}

func (w *Worker) process(ctx context.Context, item queue.Item) {
	start := time.Now()
	log := w.logger.With(
		zap.String("job_id", item.JobID),
		zap.String("source_id", item.SourceID),
	)

	// Jobs for the same source serialize here; everything else runs
	// concurrently. No lock is held across queue waits, only across one
	// job's processing.
	w.locks.Lock(item.SourceID)
	defer w.locks.Unlock(item.SourceID)

	job, err := w.jobs.GetByID(ctx, item.JobID)
	if err != nil {
		// The row stays in its queued state; the recovery poller will
		// re-enqueue it once the cutoff passes.
		log.Error("failed to fetch job", zap.Error(err))
		return
	}

	// A redelivered channel item can race a retry that already ran.
	if job.Status == domain.JobStatusCompleted || job.Status == domain.JobStatusDeadLetter {
		log.Debug("job already settled, skipping", zap.String("status", string(job.Status)))
		return
	}

	if err := w.jobs.UpdateStatus(ctx, job.ID, domain.JobStatusProcessing); err != nil {
		log.Error("failed to mark job as processing", zap.Error(err))
		return
	}

	created, err := w.svc.CreateNotifications(ctx, job)
	elapsed := time.Since(start)

	// Settle writes run on a non-cancelled context: a shutdown that
	// interrupts the job above must still be able to record its fate,
	// otherwise the row sticks in processing until the recovery cutoff.
	settleCtx := context.WithoutCancel(ctx)

	if err != nil {
		w.onProcessed(w.handleFailure(settleCtx, job, err, log), elapsed)
		return
	}

	if err := w.jobs.MarkCompleted(settleCtx, job.ID); err != nil {
		log.Error("failed to mark job as completed", zap.Error(err))
		return
	}

	for _, n := range created {
		w.onNotified(n.Type)
	}
	w.onProcessed(OutcomeCompleted, elapsed)
	log.Info("job completed",
		zap.Int("notifications", len(created)),
		zap.Duration("latency", elapsed),
	)
}

// handleFailure classifies a job error and settles the job accordingly:
// schema errors dead-letter immediately, everything else is scheduled for
// redelivery until the attempt ceiling is reached.
//
// Redelivery uses the configured backoff ladder:
//
//	attempt 1 → backoff[0]  (default 5 s)
//	attempt 2 → backoff[1]  (default 30 s)
//	attempt N ≥ len(backoff) → last entry (clamped)
func (w *Worker) handleFailure(ctx context.Context, job *domain.Job, jobErr error, log *zap.Logger) string {
	w.reporter.Capture(jobErr, map[string]string{
		"jobId": job.ID, "sourceId": job.SourceID,
	})

	if domain.IsSchemaError(jobErr) {
		log.Error("job payload is structurally invalid, dead-lettering", zap.Error(jobErr))
		if err := w.jobs.MarkDeadLetter(ctx, job.ID, jobErr.Error()); err != nil {
			log.Error("failed to dead-letter job", zap.Error(err))
		}
		return OutcomeDeadLetter
	}

	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		log.Error("job exhausted retry budget, dead-lettering",
			zap.Int("attempts", attempts), zap.Error(jobErr))
		if err := w.jobs.MarkDeadLetter(ctx, job.ID, jobErr.Error()); err != nil {
			log.Error("failed to dead-letter job", zap.Error(err))
		}
		return OutcomeDeadLetter
	}

	idx := attempts - 1
	if idx >= len(w.backoff) {
		idx = len(w.backoff) - 1
	}
	nextAttempt := time.Now().UTC().Add(w.backoff[idx])

	log.Warn("job failed, scheduling redelivery",
		zap.Int("attempts", attempts),
		zap.Time("next_attempt_at", nextAttempt),
		zap.Error(jobErr),
	)
	if err := w.jobs.ScheduleRetry(ctx, job.ID, attempts, nextAttempt, jobErr.Error()); err != nil {
		log.Error("failed to schedule redelivery", zap.Error(err))
	}
	return OutcomeRetried
}
