package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/config"
	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/queue"
	"github.com/gamewatch/notifier/internal/report"
	"github.com/gamewatch/notifier/internal/repository"
	"github.com/gamewatch/notifier/internal/service"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the pool constructor signature clean.
type MetricHooks struct {
	OnProcessed func(outcome string, latency time.Duration)
	OnNotified  func(t domain.NotificationType)
}

// Pool manages the lifecycle of all workers. All workers are identical and
// share one queue and one keyed lock; per-source ordering comes from the
// lock, not from worker assignment.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool creates cfg.Concurrency workers.
func NewPool(
	cfg *config.Config,
	q *queue.JobQueue,
	jobs repository.JobRepository,
	svc *service.NotificationService,
	reporter report.Reporter,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	locks := NewKeyedLock()
	workers := make([]*Worker, cfg.Concurrency)

	for i := range workers {
		workers[i] = NewWorker(
			i, q, jobs, svc, locks, reporter,
			cfg.RetryBackoff,
			logger.With(zap.Int("worker_id", i)),
			hooks.OnProcessed,
			hooks.OnNotified,
		)
	}

	return &Pool{workers: workers}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight jobs finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
