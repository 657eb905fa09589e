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
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/installment-service/internal/cache"
	"github.com/segyhp/installment-service/internal/config"
	"github.com/segyhp/installment-service/internal/handler"
	"github.com/segyhp/installment-service/internal/repository"
	"github.com/segyhp/installment-service/internal/service"
	"github.com/segyhp/installment-service/pkg/logger"
	"github.com/segyhp/installment-service/pkg/metrics"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "installment-api"}).Error(ctx, "failed to load configuration", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "installment-api",
		Level:       logger.ParseLevel(cfg.Logging.Level),
		Format:      cfg.Logging.Format,
	})

	db, err := initDB(cfg)
	if err != nil {
		log.Error(ctx, "failed to initialize database", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
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

	installmentHandler := handler.NewInstallmentHandler(installmentService, log)
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"database": handler.DBPinger(db),
		"redis":    handler.RedisPinger(redisClient),
	}, cfg.Health.Timeout)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler.NewRouter(installmentHandler, healthHandler, log, metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(log.WithField(ctx, "addr", server.Addr), "server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server failed to start", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server forced to shutdown", err)
		return
	}

	log.Info(ctx, "server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
