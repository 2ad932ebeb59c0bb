package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"staffbook/internal/bootstrap"
	"staffbook/internal/notifier"
	"staffbook/pkg/config"
	"staffbook/pkg/kafka"
	kafkamw "staffbook/pkg/kafka/middleware"
	"staffbook/pkg/metrics"
)

const ServiceName = "waitlist-notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	services, err := bootstrap.Build(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize services", "error", err)
	}

	kcfg, err := kafka.LoadConfig()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	handler := notifier.NewHandler(services.Waitlist, cfg.Log)
	consumer, err := kafka.NewConsumer(kcfg, cfg.AppointmentEventsTopic, cfg.NotifierGroupID, cfg.EventsDLQTopic, handler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create consumer", "error", err)
	}
	consumer.Use(kafkamw.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafkamw.MetricsConsumerMiddleware())

	metrics.Register()
	metricsServer := &http.Server{
		Addr:        ":" + cfg.MetricsPort,
		Handler:     metrics.Handler(),
		ReadTimeout: cfg.ReadTimeout,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Metrics server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting waitlist notifier",
		"topic", cfg.AppointmentEventsTopic,
		"group_id", cfg.NotifierGroupID,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		cfg.Log.Error("Metrics server shutdown failed", "error", err)
	}
	services.Close(shutdownCtx)
	cfg.Log.Info("Waitlist notifier stopped")
}
