// Package main is the entrypoint for the correlation gateway server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alkem-io/correlation-gateway/internal/clients"
	"github.com/alkem-io/correlation-gateway/internal/config"
	"github.com/alkem-io/correlation-gateway/internal/correlation"
	"github.com/alkem-io/correlation-gateway/internal/events"
	"github.com/alkem-io/correlation-gateway/internal/health"
	"github.com/alkem-io/correlation-gateway/internal/metrics"
	"github.com/alkem-io/correlation-gateway/internal/middleware"
	"github.com/alkem-io/correlation-gateway/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := config.MustNewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting correlation gateway",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
	)

	// Correlation plugin. Invalid options abort startup.
	correlationMetrics := metrics.NewCorrelationMetrics()
	api := pipeline.New(logger)
	correlator, err := correlation.Register(api, cfg.Correlation, logger, correlation.WithObserver(correlationMetrics))
	if err != nil {
		logger.Fatal("failed to register correlation plugin", zap.Error(err))
	}
	header := correlator.Config().Header()

	redisClient, err := clients.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to create redis client", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	rabbitMQClient, err := clients.NewRabbitMQClient(cfg.RabbitMQURL, cfg.RabbitMQQueue)
	if err != nil {
		logger.Fatal("failed to create rabbitmq client", zap.Error(err))
	}
	defer func() { _ = rabbitMQClient.Close() }()

	mux := http.NewServeMux()

	// Health check endpoints
	healthHandlers := health.NewHandlers(redisClient, rabbitMQClient)
	mux.HandleFunc("GET /health/live", healthHandlers.LiveHandler)
	mux.HandleFunc("GET /health/ready", healthHandlers.ReadyHandler)
	mux.Handle("GET /metrics", correlationMetrics.Handler())

	// Event relay endpoints
	eventService := events.NewService(redisClient, rabbitMQClient, cfg.EventDedupTTL, logger)
	eventHandler := events.NewHandler(eventService, logger)
	mux.Handle("POST /api/v1/events", api.Handle(eventHandler.HandleEvent))
	mux.Handle("GET /api/v1/correlation", api.Handle(eventHandler.HandleCorrelation))

	// Apply middleware chain. Correlation wraps everything below logging so
	// maintenance responses and mux 404/405s carry the header too.
	var handler http.Handler = mux
	handler = middleware.Maintenance(cfg.MaintenanceMode, cfg.MaintenanceMessage, logger)(handler)
	handler = correlation.Middleware(correlator)(handler)
	handler = middleware.Logging(logger, header)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
