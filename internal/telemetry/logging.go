package telemetry

import (
	"context"
	"io"
	"log/slog"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// NewLogger returns a JSON logger tagged with the service identity. Records
// logged with a context carrying a span get trace_id and span_id attributes.
func NewLogger(w io.Writer, res Resource) *slog.Logger {
	return slog.New(NewLogHandler(slog.NewJSONHandler(w, nil))).With(
		"service_name", res.ServiceName,
		"environment", res.Environment,
	)
}

func NewLogHandler(next slog.Handler) slog.Handler {
	return traceHandler{next: next}
}

type traceHandler struct {
	next slog.Handler
}

func (h traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h traceHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := oteltrace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.next.Handle(ctx, record)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{next: h.next.WithGroup(name)}
}
