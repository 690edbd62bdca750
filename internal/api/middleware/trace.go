package middleware

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/phrazzld/account-api/internal/api/shared"
	"github.com/phrazzld/account-api/internal/platform/logger"
)

// TraceIDHeader echoes the request trace ID back to the client.
const TraceIDHeader = "X-Trace-Id"

// TraceMiddleware assigns the request a trace ID and stores a logger
// carrying it in the context. The ID of an active OpenTelemetry span is
// reused so logs and exported traces correlate; otherwise a random one is
// generated. Apply it before any middleware that logs.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var traceID string
		if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		}

		ctx := shared.WithTraceID(r.Context(), traceID)
		traceID = shared.GetTraceID(ctx)

		log := logger.FromContext(ctx).With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		w.Header().Set(TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
