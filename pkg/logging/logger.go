package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jmgilman/go/errors"
)

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger wraps slog.Logger with document-cache specific helpers.
// It keeps field names consistent between the gateway, the cache and the CLI.
type Logger struct {
	*slog.Logger
}

// Options configures New.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New creates a Logger from opts. Empty values fall back to info level, text
// format and stderr.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, FormatJSON) {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewWithHandler wraps an existing handler. A nil handler yields a Noop logger.
func NewWithHandler(handler slog.Handler) *Logger {
	if handler == nil {
		return Noop()
	}
	return &Logger{Logger: slog.New(handler)}
}

// Noop creates a Logger that discards all log output.
func Noop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))}
}

// OrNoop returns l, or a Noop logger when l is nil.
func OrNoop(l *Logger) *Logger {
	if l == nil {
		return Noop()
	}
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// With returns a Logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithCollection tags the logger with a collection name.
func (l *Logger) WithCollection(name string) *Logger {
	return l.With("collection", name)
}

// LogStoreFailure logs a store error that the caller swallowed.
func (l *Logger) LogStoreFailure(ctx context.Context, op string, err error) {
	l.ErrorContext(ctx, "store operation failed",
		"op", op,
		"code", string(errors.GetCode(err)),
		"error", err,
	)
}

// LogCacheEviction logs entries dropped to honour capacity.
func (l *Logger) LogCacheEviction(ctx context.Context, key string, evicted, size int) {
	l.DebugContext(ctx, "cache eviction",
		"key", key,
		"evicted", evicted,
		"size", size,
	)
}

// LogCacheClear logs a cache reset.
func (l *Logger) LogCacheClear(ctx context.Context, removed int) {
	l.DebugContext(ctx, "cache cleared",
		"removed", removed,
	)
}
