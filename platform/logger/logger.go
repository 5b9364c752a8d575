// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// UserIDKey is the context key for user ID
	UserIDKey contextKey = "user_id"
	// TenantIDKey is the context key for the organization ID
	TenantIDKey contextKey = "tenant_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a logger writing to w. Tests pass io.Discard.
func NewWithWriter(env string, w io.Writer) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") || strings.EqualFold(env, "test") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return NewWithWriter("test", io.Discard)
}

// WithContext returns a logger with request_id, user_id and tenant_id
// extracted from ctx when present.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	attrs := make([]any, 0, 3)
	for _, key := range []contextKey{RequestIDKey, UserIDKey, TenantIDKey} {
		if value, ok := ctx.Value(key).(string); ok && value != "" {
			attrs = append(attrs, slog.String(string(key), value))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{Logger: l.With(attrs...)}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// SagaStep logs progress of the won-transition provisioning saga.
func (l *Logger) SagaStep(step, leadID string, attrs ...any) {
	l.Info("saga_step", append([]any{slog.String("step", step), slog.String("lead_id", leadID)}, attrs...)...)
}

// SagaWarning logs a non-fatal saga sub-failure.
func (l *Logger) SagaWarning(step, leadID string, err error, attrs ...any) {
	l.Warn("saga_warning", append([]any{
		slog.String("step", step),
		slog.String("lead_id", leadID),
		slog.String("error", err.Error()),
	}, attrs...)...)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
