// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	GlobalLogger = NewLogger(slog.LevelInfo)
}

// NewLogger returns a JSON logger at the given level. Logs go to stderr so
// command output on stdout stays parseable.
func NewLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// SetLevel replaces GlobalLogger with one at the named level (debug, info, warn, error).
// Unknown names fall back to info.
func SetLevel(name string) {
	GlobalLogger = NewLogger(ParseLevel(name))
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type correlationKey struct{}

// GenerateCorrelationID returns a fresh id tying together the log lines of one command.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID attaches id to ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// ExtractCorrelationID returns the id attached by WithCorrelationID, or "".
func ExtractCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

func emit(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if id := ExtractCorrelationID(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	GlobalLogger.LogAttrs(ctx, level, msg, attrs...)
}

// StoreLogger logs record store traffic for one backend or collection.
// Successful loads and saves are debug-level.
type StoreLogger struct {
	backend string
}

func NewStoreLogger(backend string) *StoreLogger {
	return &StoreLogger{backend: backend}
}

func (l *StoreLogger) LogLoad(ctx context.Context, key string, found bool, size int) {
	emit(ctx, slog.LevelDebug, "store load",
		slog.String("backend", l.backend), slog.String("key", key),
		slog.Bool("found", found), slog.Int("bytes", size))
}

func (l *StoreLogger) LogSave(ctx context.Context, key string, size int) {
	emit(ctx, slog.LevelDebug, "store save",
		slog.String("backend", l.backend), slog.String("key", key), slog.Int("bytes", size))
}

// LogCorrupt reports a blob that failed to decode and was read as an empty collection.
func (l *StoreLogger) LogCorrupt(ctx context.Context, key string, err error) {
	emit(ctx, slog.LevelWarn, "corrupt collection treated as empty",
		slog.String("backend", l.backend), slog.String("key", key), slog.String("error", err.Error()))
}

func (l *StoreLogger) LogError(ctx context.Context, err error, operation, key string) {
	emit(ctx, slog.LevelError, "store error",
		slog.String("backend", l.backend), slog.String("operation", operation),
		slog.String("key", key), slog.String("error", err.Error()))
}

// StructuredLogger logs service-level events.
type StructuredLogger struct{}

func NewStructuredLogger() *StructuredLogger {
	return &StructuredLogger{}
}

// LogServiceCall records one service operation with its extra fields.
func (l *StructuredLogger) LogServiceCall(ctx context.Context, service, method string, fields map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("service", service),
		slog.String("method", method),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	emit(ctx, slog.LevelInfo, "service call", attrs...)
}

// LogDeliveryFailure reports a notification that could not be stored or published.
// Delivery is best-effort, so the triggering operation still succeeds.
func (l *StructuredLogger) LogDeliveryFailure(ctx context.Context, recipientID, kind string, err error) {
	emit(ctx, slog.LevelWarn, "notification delivery failed",
		slog.String("recipient_id", recipientID), slog.String("kind", kind), slog.String("error", err.Error()))
}
