package http

import (
	"context"
	"log/slog"
)

// httpLogger tags the default logger for this adapter; the service attribute
// is already set on the default logger at bootstrap.
func httpLogger() *slog.Logger {
	return slog.Default().With("adapter", "http")
}

// logRequestFailure records a failed request operation, warn for client
// errors and error for server errors.
func logRequestFailure(ctx context.Context, operation string, statusCode int, code string, err error) {
	fields := []any{
		"operation", operation,
		"status_code", statusCode,
		"error_code", code,
		"request_id", requestIDFromContext(ctx),
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	if statusCode >= 500 {
		httpLogger().ErrorContext(ctx, "request failed", fields...)
		return
	}
	httpLogger().WarnContext(ctx, "request failed", fields...)
}
