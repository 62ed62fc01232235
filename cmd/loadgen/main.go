package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/config"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/loadgen"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/shopclient"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	host := flag.String("host", cfg.APIURL, "base URL of the shop API")
	users := flag.Int("users", 10, "number of normal shoppers")
	heavy := flag.Int("heavy", 2, "number of heavy shoppers")
	spawnRate := flag.Float64("spawn-rate", 2, "virtual users started per second")
	duration := flag.Duration("duration", time.Minute, "run length, 0 runs until interrupted")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Parse()

	res := telemetry.Resource{
		ServiceName:      cfg.AppName + "-loadgen",
		ServiceNamespace: cfg.ServiceNamespace,
		ServiceVersion:   cfg.ServiceVersion,
		Environment:      cfg.Environment,
	}
	logger := telemetry.NewLogger(os.Stdout, res)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, res, cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	runner, err := loadgen.NewRunner(shopclient.New(*host), loadgen.Config{
		Users:     *users,
		Heavy:     *heavy,
		SpawnRate: *spawnRate,
		Duration:  *duration,
		Seed:      *seed,
	}, logger)
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		os.Exit(1)
	}

	logger.Info("targeting shop api", "host", *host, "seed", *seed)
	if err := runner.Run(ctx); err != nil {
		logger.Error("load run failed", "error", err)
		runner.Stats().Log(logger)
		os.Exit(1)
	}

	runner.Stats().Log(logger)
}
