// Package logger builds the service's JSON slog logger and carries
// request-scoped loggers through context.Context. Records logged inside an
// OpenTelemetry span gain otel_trace_id and span_id attributes.
package logger
