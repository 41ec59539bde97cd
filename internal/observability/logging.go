// Package observability carries structured logging context (run, stage,
// document) through context.Context.
package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/mdpo/internal/logfields"
)

// LogContext holds the attributes attached to every log record of a run.
type LogContext struct {
	RunID    string
	Stage    string
	Document string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// KeyRunID is the attribute name of the run identifier.
const KeyRunID = "run.id"

// WithRunID adds a run identifier to the context. An empty id generates one.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	lc := extractLogContext(ctx)
	lc.RunID = id
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithDocument adds the document being processed to the context.
func WithDocument(ctx context.Context, name string) context.Context {
	lc := extractLogContext(ctx)
	lc.Document = name
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the log context stored in ctx.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// Attrs returns the non-empty context attributes.
func Attrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	var attrs []slog.Attr
	if lc.RunID != "" {
		attrs = append(attrs, slog.String(KeyRunID, lc.RunID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, logfields.Stage(lc.Stage))
	}
	if lc.Document != "" {
		attrs = append(attrs, logfields.Document(lc.Document))
	}
	return attrs
}

// Logger returns base (or the default logger) with the context attributes
// attached.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return base
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return base.With(args...)
}
