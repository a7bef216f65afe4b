package log

import (
	"context"
	"log/slog"
	"net/http"
)

type loggerKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the request logger, or one wrapping slog.Default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return l
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// enrich rewrites the request logger with fn before calling next.
func enrich(fn func(*http.Request, *Logger) *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := fn(r, FromContext(r.Context()))
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// Middleware seeds every request context with logger.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return enrich(func(*http.Request, *Logger) *Logger { return logger })
}

// ComponentMiddleware rescopes the request logger to component.
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return enrich(func(_ *http.Request, l *Logger) *Logger { return l.WithComponent(component) })
}

// RequestIDMiddleware tags the request logger with the id returned by extract.
func RequestIDMiddleware(extract func(*http.Request) string) func(http.Handler) http.Handler {
	return enrich(func(r *http.Request, l *Logger) *Logger {
		if id := extract(r); id != "" {
			return l.With(FieldRequestID, id)
		}
		return l
	})
}

// StructuredLogger emits the fixed-shape records for HTTP traffic and ledger writes.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)
	sl.logger.WithComponent(ComponentHTTP).DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs at warn for 4xx and error for 5xx.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	var level slog.Level
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	default:
		level = slog.LevelInfo
	}
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)
	sl.logger.WithComponent(ComponentHTTP).LogLevel(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, id, desc, amount, category string) {
	fields := NewFields().WithTransaction(id, desc, amount, category).WithOperation(OpCreate)
	sl.logger.WithComponent(ComponentLedger).InfoContext(ctx, "Transaction created", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogMonthClosed(ctx context.Context, periodKey, ending string, moved, created int) {
	args := NewFields().WithPeriod(periodKey).WithOperation(OpCloseMonth).ToSlice()
	args = append(args, "ending_balance", ending, "unpaid_moved", moved, "recurring_created", created)
	sl.logger.WithComponent(ComponentLedger).InfoContext(ctx, "Month closed", args...)
}

// LogError logs err under component. fields may be nil.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields = fields.WithError(err).WithOperation(operation)
	sl.logger.WithComponent(component).ErrorContext(ctx, msg, fields.ToSlice()...)
}
