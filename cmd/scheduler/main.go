package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/segyhp/installment-service/internal/cache"
	"github.com/segyhp/installment-service/internal/config"
	"github.com/segyhp/installment-service/internal/repository"
	"github.com/segyhp/installment-service/internal/service"
	"github.com/segyhp/installment-service/pkg/logger"
	"github.com/segyhp/installment-service/pkg/metrics"
)

// jobs is what the scheduler drives on the installment service
type jobs interface {
	ApplyOverdueFines(ctx context.Context) (int, error)
	ReconcileRefunds(ctx context.Context) (int, error)
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "installment-scheduler"}).Error(ctx, "failed to load configuration", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "installment-scheduler",
		Level:       logger.ParseLevel(cfg.Logging.Level),
		Format:      cfg.Logging.Format,
	})
	log.Info(ctx, "starting installment scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error(ctx, "failed to initialize database", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	installmentService := service.NewInstallmentService(
		repository.NewInstallmentRepository(db),
		repository.NewInstallmentItemRepository(db),
		repository.NewOrderRepository(db),
		repository.NewUserRepository(db),
		cache.NewPlanCache(redisClient, cfg.Redis.CacheTTL),
		cfg,
		log,
	)

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.Metrics.Port,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", err)
		}
	}()

	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.Location()))
	if err := setupCronJobs(c, cfg, installmentService, log, jobMetrics); err != nil {
		log.Error(ctx, "failed to schedule jobs", err)
		os.Exit(1)
	}

	c.Start()
	log.Info(ctx, "scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down scheduler")
	// Wait for running jobs before closing the pools
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "metrics server forced to shutdown", err)
	}
	log.Info(ctx, "scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, svc jobs, log *logger.Logger, m *metrics.JobMetrics) error {
	if _, err := c.AddFunc(cfg.Scheduler.FineCron, func() {
		runJob(log, m, "overdue_fines", svc.ApplyOverdueFines)
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc(cfg.Scheduler.RefundCron, func() {
		runJob(log, m, "refund_reconcile", svc.ReconcileRefunds)
	}); err != nil {
		return err
	}

	return nil
}

func runJob(log *logger.Logger, m *metrics.JobMetrics, name string, job func(ctx context.Context) (int, error)) {
	ctx := log.WithField(context.Background(), "job", name)
	log.Info(ctx, "job started")

	start := time.Now()
	count, err := job(ctx)
	m.Observe(name, time.Since(start), count, err)

	ctx = log.WithField(ctx, "count", count)
	if err != nil {
		log.Error(ctx, "job finished with errors", err)
		return
	}

	log.Info(ctx, "job finished")
}
