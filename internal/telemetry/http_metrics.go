package telemetry

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics counts requests, server errors and latency per route and writes
// one log line per request. Health checks and metric scrapes are skipped.
type HTTPMetrics struct {
	requests metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
	logger   *slog.Logger
}

func NewHTTPMetrics(meter metric.Meter, logger *slog.Logger) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Total number of HTTP requests processed by the backend."))
	if err != nil {
		return nil, err
	}

	errors, err := meter.Int64Counter("http.server.error.count",
		metric.WithDescription("Total number of HTTP requests that resulted in 5xx responses."))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration in milliseconds."),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requests: requests,
		errors:   errors,
		duration: duration,
		logger:   logger,
	}, nil
}

func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured := httpsnoop.CaptureMetrics(next, w, r)

		if isSystemPath(r.URL.Path) {
			return
		}

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		durationMs := float64(captured.Duration.Microseconds()) / 1000

		attrs := metric.WithAttributes(
			attribute.String("http_method", r.Method),
			attribute.String("http_path", route),
			attribute.String("http_status_code", strconv.Itoa(captured.Code)),
			attribute.String("http_status_class", strconv.Itoa(captured.Code/100)+"xx"),
		)
		ctx := r.Context()
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, durationMs, attrs)
		if captured.Code >= http.StatusInternalServerError {
			m.errors.Add(ctx, 1, attrs)
		}

		level := slog.LevelInfo
		if captured.Code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		m.logger.Log(ctx, level, r.Method+" "+r.URL.Path,
			"http_method", r.Method,
			"http_path", r.URL.Path,
			"http_status_code", captured.Code,
			"duration_ms", durationMs,
		)
	})
}

func isSystemPath(path string) bool {
	return strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/metrics")
}
