package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/ingest"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/projection"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/replay"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/infrastructure/config"
	infrakafka "github.com/adhikag24/unified-pricing-layer-mvp/internal/infrastructure/kafka"
	infrapg "github.com/adhikag24/unified-pricing-layer-mvp/internal/infrastructure/postgres"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/presentation/rest"
	"github.com/adhikag24/unified-pricing-layer-mvp/pkg/observability"
	pg "github.com/adhikag24/unified-pricing-layer-mvp/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   os.Getenv("LOG_LEVEL"),
		Service: cfg.ServiceName,
	})
	slog.SetDefault(logger)

	logger.Info("starting unified pricing read layer",
		"http_port", cfg.HTTPPort,
		"kafka_topic", cfg.Kafka.Topic,
	)

	meter, metricsHandler, err := observability.InitMetrics(cfg.ServiceName)
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	pipelineMetrics, err := ingest.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to register pipeline metrics", "error", err)
		os.Exit(1)
	}

	// Database.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	if err := pg.RunMigrations(cfg.Database.DSN(), cfg.MigrationsURL); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	pool, err := pg.NewPool(dbCtx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	store := infrapg.NewStore(pool)

	// Write path.
	pipeline := ingest.NewPipeline(store, logger, pipelineMetrics, ingest.Config{
		EventTimeout: cfg.Pipeline.EventTimeout,
		MaxRetries:   cfg.Pipeline.MaxRetries,
	})

	consumer, err := infrakafka.NewConsumer(cfg.Kafka.Client, cfg.Kafka.Topic, pipeline, logger)
	if err != nil {
		logger.Error("failed to build kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	publisher, err := infrakafka.NewPublisher(cfg.Kafka.Client, cfg.Kafka.Topic)
	if err != nil {
		logger.Error("failed to build kafka publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// Read path.
	projector := projection.NewProjector(store, logger)
	replaySvc := replay.NewService(store, publisher, logger)

	// HTTP server.
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, store.Ready, logger).RegisterRoutes(mux)
	rest.NewOrderHandler(projector, logger).RegisterRoutes(mux)
	rest.NewDLQHandler(replaySvc, logger).RegisterRoutes(mux)
	rest.NewEventHandler(pipeline, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		if err := consumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("unified pricing read layer stopped")
}
