package queue

import (
	"context"

	"github.com/gamewatch/notifier/internal/domain"
)

// Item is the minimal data placed on the queue.
// Workers fetch the full job row from the DB using the ID, keeping the
// queue lightweight and the persisted job authoritative. SourceID rides
// along so the worker can take its per-source lock before touching the DB.
type Item struct {
	JobID    string
	SourceID string
}

// JobQueue is a bounded in-process dispatch channel for create-notifications
// jobs. Persistence, redelivery and dead-lettering live in the job
// repository; the channel only moves IDs between the ingest side and the
// worker pool.
type JobQueue struct {
	items chan Item
}

func New(capacity int) *JobQueue {
	return &JobQueue{items: make(chan Item, capacity)}
}

// Enqueue places an item on the queue. It is non-blocking: if the channel is
// full, ErrQueueFull is returned immediately rather than blocking the caller.
// The job row stays in its persisted state and the recovery poller picks it
// up later.
func (q *JobQueue) Enqueue(item Item) error {
	select {
	case q.items <- item:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until an item is available or ctx is cancelled.
// Returns (Item{}, false) when ctx is cancelled (graceful shutdown signal).
func (q *JobQueue) Dequeue(ctx context.Context) (Item, bool) {
	select {
	case item := <-q.items:
		return item, true
	case <-ctx.Done():
		return Item{}, false
	}
}

// Depth returns the current number of items waiting for a worker.
// Used by the metrics handler for the queue snapshot.
func (q *JobQueue) Depth() int {
	return len(q.items)
}
