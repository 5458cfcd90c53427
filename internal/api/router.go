package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/api/handler"
	apimw "github.com/gamewatch/notifier/internal/api/middleware"
	"github.com/gamewatch/notifier/internal/queue"
	"github.com/gamewatch/notifier/internal/repository"
	"github.com/gamewatch/notifier/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. This service's HTTP surface is operational only: job ingest
// from the sync process, health and metrics, and a read-only audit view.
// The user-facing CRUD API lives in the surrounding system.
func NewRouter(
	ingest *service.IngestService,
	notifications repository.NotificationRepository,
	q *queue.JobQueue,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body; snapshots are small
	r.Use(apimw.CorrelationID)        // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	jh := handler.NewJobHandler(ingest, logger)
	nh := handler.NewNotificationHandler(notifications)
	qh := handler.NewQueueHandler(q)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jobs", jh.Create)
		r.Get("/queue", qh.GetQueue)
		r.Get("/sources/{id}/notifications", nh.ListBySource)
	})

	return r
}
