// Command lmsd runs the loan lifecycle engine: the gRPC service surface, the
// operational HTTP endpoints and the scheduled end-of-day batch.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/harshitrathi14/LOS-LMS/internal/application/usecase"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/infrastructure/config"
	"github.com/harshitrathi14/LOS-LMS/internal/infrastructure/locking"
	"github.com/harshitrathi14/LOS-LMS/internal/infrastructure/messaging"
	storepg "github.com/harshitrathi14/LOS-LMS/internal/infrastructure/postgres"
	grpcpresentation "github.com/harshitrathi14/LOS-LMS/internal/presentation/grpc"
	"github.com/harshitrathi14/LOS-LMS/internal/presentation/rest"
	"github.com/harshitrathi14/LOS-LMS/pkg/kafka"
	"github.com/harshitrathi14/LOS-LMS/pkg/observability"
	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load() //nolint:errcheck // .env is optional

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	})
	logger.Info("starting lmsd",
		"grpc_port", cfg.GRPCPort,
		"http_port", cfg.HTTPPort,
		"workers", cfg.Engine.WorkerPoolSize,
	)

	meterProvider, metricsHandler, metrics, err := observability.InitMetrics(cfg.ServiceName)
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck

	// Database.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pkgpostgres.RunMigrations(dbCfg.DSN(), "file://internal/infrastructure/postgres/migrations"); err != nil {
		logger.Warn("migration warning", "error", err)
	}

	// Messaging.
	producer := kafka.NewProducer(kafka.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer producer.Close() //nolint:errcheck
	publisher := messaging.NewKafkaEventPublisher(producer, logger)

	// Engine.
	store := storepg.NewStore(pool)
	locker := locking.NewKeyedMutex()
	engine := usecase.NewEngine(store, locker, publisher, usecase.Options{
		WorkerPoolSize: cfg.Engine.WorkerPoolSize,
		NPATriggerDPD:  cfg.Engine.NPATriggerDPD,
		SMABoundaries:  cfg.Engine.SMABoundaries,
		ECLConfig:      model.DefaultECLConfig(),
	}, logger)

	// Scheduled end-of-day run in the configured timezone.
	scheduler := cron.New(cron.WithLocation(cfg.Engine.Timezone))
	spec := fmt.Sprintf("5 %d * * *", cfg.EODHour)
	_, err = scheduler.AddFunc(spec, func() {
		asOf := truncateToDate(time.Now().In(cfg.Engine.Timezone))
		logger.Info("scheduled eod starting", "as_of", asOf.Format(time.DateOnly))

		result, err := engine.EOD.Execute(ctx, asOf)
		if err != nil {
			logger.Error("eod run failed", "error", err)
			return
		}
		metrics.BatchProcessed.Add(ctx, int64(result.Aggregate.Processed))
		metrics.BatchFailed.Add(ctx, int64(len(result.Aggregate.Failed)))
		logger.Info("eod run finished",
			"processed", result.Aggregate.Processed,
			"succeeded", result.Aggregate.Succeeded,
			"failed", len(result.Aggregate.Failed),
		)
	})
	if err != nil {
		logger.Error("failed to schedule eod", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// gRPC surface.
	handler := grpcpresentation.NewHandler(engine, metrics, logger)
	grpcServer := grpcpresentation.NewServer(handler, logger)
	go func() {
		if err := grpcServer.Serve(fmt.Sprintf(":%d", cfg.GRPCPort)); err != nil {
			logger.Error("grpc server stopped", "error", err)
			cancel()
		}
	}()

	// HTTP: health + metrics.
	mux := http.NewServeMux()
	rest.NewHealthHandler(logger, map[string]rest.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
	}).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	grpcServer.Stop()
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
