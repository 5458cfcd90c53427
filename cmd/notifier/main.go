package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/api"
	"github.com/gamewatch/notifier/internal/config"
	"github.com/gamewatch/notifier/internal/creator"
	"github.com/gamewatch/notifier/internal/db"
	"github.com/gamewatch/notifier/internal/mail"
	"github.com/gamewatch/notifier/internal/metrics"
	"github.com/gamewatch/notifier/internal/queue"
	"github.com/gamewatch/notifier/internal/ratelimiter"
	"github.com/gamewatch/notifier/internal/report"
	"github.com/gamewatch/notifier/internal/repository"
	"github.com/gamewatch/notifier/internal/service"
	"github.com/gamewatch/notifier/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	q := queue.New(cfg.QueueCapacity)

	sourceRepo := repository.NewPgSourceRepository(pool)
	notificationRepo := repository.NewPgNotificationRepository(pool)
	jobRepo := repository.NewPgJobRepository(pool)

	var reporter report.Reporter = report.Noop{}
	if cfg.ReportURL != "" {
		reporter = report.NewHTTPReporter(cfg.ReportURL, cfg.ReportTimeout, logger)
	}
	defer reporter.Close()

	sender := mail.NewCountingSender(
		mail.NewAPISender(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailTimeout),
		m.MailsSent.Inc,
		m.MailsFailed.Inc,
	)
	limiter := ratelimiter.New(cfg.MailRatePerSec)

	svc := service.NewNotificationService(
		creator.Default(),
		sourceRepo,
		notificationRepo,
		sender,
		limiter,
		reporter,
		cfg.MailTemplates,
		service.Timeouts{Lookup: cfg.LookupTimeout, Mail: cfg.MailTimeout},
		logger,
	)
	ingest := service.NewIngestService(jobRepo, q, cfg.MaxAttempts, logger)

	// ---- worker pool ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	onProcessed, onNotified := m.WorkerHooks()
	workerPool := worker.NewPool(cfg, q, jobRepo, svc, reporter, logger, worker.MetricHooks{
		OnProcessed: onProcessed,
		OnNotified:  onNotified,
	})
	workerPool.Start(workerCtx)

	retryW := worker.NewRetryWorker(jobRepo, q, cfg.RetryInterval, logger)
	go retryW.Run(workerCtx)

	recoveryW := worker.NewRecoveryWorker(jobRepo, q, cfg.RecoveryInterval, cfg.RecoveryAge, logger)
	go recoveryW.Run(workerCtx)

	// Queue depth gauge sampler.
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				m.QueueDepth.Set(float64(q.Depth()))
			}
		}
	}()

	// ---- HTTP server ----
	router := api.NewRouter(ingest, notificationRepo, q, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new jobs over HTTP.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal all workers to stop pulling new queue items.
	cancelWorkers()

	// 3. Wait for in-flight jobs to finish their current work.
	workerPool.Wait()

	logger.Info("server stopped cleanly")
}
