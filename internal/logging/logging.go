// Package logging provides structured logging built on logrus.
package logging

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// Logger wraps a logrus logger with the service name attached to every entry.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a logger for service. Unknown levels fall back to info and any
// format other than "json" selects the text formatter.
func New(service, level, format string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{Logger: l, service: service}
}

// NewDefault returns an info level text logger.
func NewDefault(service string) *Logger {
	return New(service, "info", "text")
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	l := New("test", "panic", "text")
	l.SetOutput(io.Discard)
	return l
}

// Component returns an entry tagged with the service and component names.
func (l *Logger) Component(name string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"service":   l.service,
		"component": name,
	})
}

// WithContext returns an entry carrying the trace ID stored in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.WithField("service", l.service)
	if traceID := GetTraceID(ctx); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}
	return entry
}

// LogRequest records a completed HTTP request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	})
	switch {
	case status >= 500:
		entry.Error("request failed")
	case status >= 400:
		entry.Warn("request rejected")
	default:
		entry.Info("request completed")
	}
}

// LogSecurityEvent records events such as rate limiting.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(fields).WithField("event", event).Warn("security event")
}

// LogDBError logs a database failure together with the diagnostic fields the
// postgres driver reports.
func (l *Logger) LogDBError(ctx context.Context, op string, err error) {
	entry := l.WithContext(ctx).WithError(err).WithField("op", op)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		entry = entry.WithFields(logrus.Fields{
			"pg_code":     string(pqErr.Code),
			"pg_class":    pqErr.Code.Class().Name(),
			"pg_severity": pqErr.Severity,
			"pg_detail":   pqErr.Detail,
			"pg_hint":     pqErr.Hint,
			"pg_position": pqErr.Position,
			"pg_table":    pqErr.Table,
			"pg_where":    pqErr.Where,
		})
	}
	entry.Error("database operation failed")
}

// NewTraceID generates a request trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores traceID in ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID stored in ctx or "".
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}
