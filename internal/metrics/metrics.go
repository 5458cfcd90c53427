package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gamewatch/notifier/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	JobsProcessed        *prometheus.CounterVec
	NotificationsCreated *prometheus.CounterVec
	MailsSent            prometheus.Counter
	MailsFailed          prometheus.Counter
	JobLatency           prometheus.Histogram
	QueueDepth           prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_jobs_processed_total",
			Help: "Total processed create-notification jobs by outcome.",
		}, []string{"outcome"}),

		NotificationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_notifications_created_total",
			Help: "Total persisted notifications by type.",
		}, []string{"type"}),

		MailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifier_mails_sent_total",
			Help: "Total notification mails accepted by the provider.",
		}),

		MailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifier_mails_failed_total",
			Help: "Total notification mails the provider rejected or timed out.",
		}),

		JobLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notifier_job_processing_seconds",
			Help:    "End-to-end job latency from dequeue to settled state.",
			Buckets: prometheus.DefBuckets,
		}),

		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notifier_queue_depth",
			Help: "Current number of job items waiting for a worker.",
		}),
	}

	reg.MustRegister(
		m.JobsProcessed,
		m.NotificationsCreated,
		m.MailsSent,
		m.MailsFailed,
		m.JobLatency,
		m.QueueDepth,
	)

	return m
}

// WorkerHooks returns the metric callback functions expected by
// worker.MetricHooks. Centralises the prometheus observation calls so the
// worker package stays metrics-agnostic.
func (m *Metrics) WorkerHooks() (
	onProcessed func(outcome string, latency time.Duration),
	onNotified func(t domain.NotificationType),
) {
	onProcessed = func(outcome string, latency time.Duration) {
		m.JobsProcessed.WithLabelValues(outcome).Inc()
		m.JobLatency.Observe(latency.Seconds())
	}
	onNotified = func(t domain.NotificationType) {
		m.NotificationsCreated.WithLabelValues(string(t)).Inc()
	}
	return
}
