package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/cart"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/config"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/messaging"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/orders"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/products"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/seed"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/server"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/storage"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/telemetry"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/users"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	res := telemetry.Resource{
		ServiceName:      cfg.AppName,
		ServiceNamespace: cfg.ServiceNamespace,
		ServiceVersion:   cfg.ServiceVersion,
		Environment:      cfg.Environment,
	}
	logger := telemetry.NewLogger(os.Stdout, res)

	if cfg.OTelEnabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, res, cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(ctx) }()
	}

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(res)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	httpMetrics, err := telemetry.NewHTTPMetrics(otel.Meter(cfg.AppName), logger)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		if err := storage.MigrateUp(cfg.MigrationsPath, cfg.Database.DSN()); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrated")
	}

	db, err := storage.Open(ctx, cfg.Database.DSN(), cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var publisher orders.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.OrderCreatedTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	userDirectory := users.NewDirectory(users.NewUserRepository(db), logger)
	catalog := products.NewCatalog(db, logger)
	cartManager := cart.NewManager(db, logger)
	processor := orders.NewProcessor(db, publisher, logger)

	if cfg.SeedDemoData {
		if err := seed.Run(ctx, catalog, userDirectory, logger); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	handler := server.New(server.Options{
		ServiceName: cfg.AppName,
		Handlers: server.Handlers{
			Users:    users.NewHandler(userDirectory, logger),
			Products: products.NewHandler(catalog, logger),
			Cart:     cart.NewHandler(cartManager, logger),
			Orders:   orders.NewHandler(processor, logger),
		},
		Metrics:     metricsHandler,
		HTTPMetrics: httpMetrics,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting shop api", "port", cfg.Port, "kafka", len(cfg.KafkaBrokers) > 0)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
