package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/queue"
	"github.com/gamewatch/notifier/internal/repository"
	"github.com/gamewatch/notifier/internal/service"
)

func newJobHandler(queueCapacity int) (*JobHandler, *queue.JobQueue) {
	q := queue.New(queueCapacity)
	svc := service.NewIngestService(repository.NewMockJobRepository(), q, 4, zap.NewNop())
	return NewJobHandler(svc, zap.NewNop()), q
}

func postJob(t *testing.T, h *JobHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestJobCreate(t *testing.T) {
	h, q := newJobHandler(4)

	rec := postJob(t, h, `{"sourceId":"src-1","resolvedGameData":{"id":"620"}}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var j domain.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &j); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if j.Status != domain.JobStatusQueued {
		t.Fatalf("job status = %s, want queued", j.Status)
	}
	if q.Depth() != 1 {
		t.Fatalf("queue depth = %d, want 1", q.Depth())
	}
}

func TestJobCreateQueueFull(t *testing.T) {
	h, q := newJobHandler(1)
	if err := q.Enqueue(queue.Item{JobID: "blocker"}); err != nil {
		t.Fatalf("prime queue: %v", err)
	}

	// A full queue is not a client error: the row is persisted and the
	// recovery poller dispatches it later.
	rec := postJob(t, h, `{"sourceId":"src-1","resolvedGameData":{"id":"620"}}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 even with a full queue", rec.Code)
	}

	var j domain.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &j); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if j.Status != domain.JobStatusPending {
		t.Fatalf("job status = %s, want pending (awaiting recovery)", j.Status)
	}
}

func TestJobCreateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", `{broken`, http.StatusBadRequest},
		{"missing source id", `{"resolvedGameData":{}}`, http.StatusUnprocessableEntity},
		{"missing resolved data", `{"sourceId":"src-1"}`, http.StatusUnprocessableEntity},
		{"null resolved data", `{"sourceId":"src-1","resolvedGameData":null}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newJobHandler(4)
			rec := postJob(t, h, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body %+v", body)
	}
}
