package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/queue"
)

func TestEnqueueDequeue(t *testing.T) {
	q := queue.New(2)

	if err := q.Enqueue(queue.Item{JobID: "a", SourceID: "s1"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(queue.Item{JobID: "b", SourceID: "s2"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if got := q.Depth(); got != 2 {
		t.Fatalf("depth = %d, want 2", got)
	}

	item, ok := q.Dequeue(context.Background())
	if !ok || item.JobID != "a" {
		t.Fatalf("dequeue = %+v, %v; want item a", item, ok)
	}
	item, ok = q.Dequeue(context.Background())
	if !ok || item.JobID != "b" {
		t.Fatalf("dequeue = %+v, %v; want item b", item, ok)
	}
	if got := q.Depth(); got != 0 {
		t.Fatalf("depth = %d, want 0", got)
	}
}

func TestEnqueueFull(t *testing.T) {
	q := queue.New(1)

	if err := q.Enqueue(queue.Item{JobID: "a"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	err := q.Enqueue(queue.Item{JobID: "b"})
	if !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDequeueCancelled(t *testing.T) {
	q := queue.New(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := q.Dequeue(ctx); ok {
			t.Error("dequeue must report false after cancellation")
		}
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dequeue did not return after cancellation")
	}
}
