package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/config"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/messaging"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/notification"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/shopclient"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	res := telemetry.Resource{
		ServiceName:      cfg.AppName + "-worker",
		ServiceNamespace: cfg.ServiceNamespace,
		ServiceVersion:   cfg.ServiceVersion,
		Environment:      cfg.Environment,
	}
	logger := telemetry.NewLogger(os.Stdout, res)

	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}
	if cfg.EmailServiceURL == "" {
		logger.Error("EMAIL_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTelEnabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, res, cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, cfg.OrderCreatedTopic, cfg.WorkerGroupID)
	defer func() { _ = consumer.Close() }()

	handler := notification.NewHandler(
		notification.NewEmailClient(cfg.EmailServiceURL, nil),
		shopclient.New(cfg.APIURL),
		logger,
	)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting notification worker",
		"brokers", cfg.KafkaBrokers, "topic", cfg.OrderCreatedTopic, "group_id", cfg.WorkerGroupID)

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
