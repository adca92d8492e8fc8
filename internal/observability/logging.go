// Package observability carries build identity through a context and onto
// every log record emitted with that context.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// LogContext holds the structured logging fields carried by a context.
type LogContext struct {
	BuildID string
	Stage   string
	Task    string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := GetContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a pipeline stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := GetContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithTask adds a post-build task name to the context.
func WithTask(ctx context.Context, task string) context.Context {
	lc := GetContext(ctx)
	lc.Task = task
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the logging fields stored in ctx.
func GetContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func (lc LogContext) attrs() []slog.Attr {
	var attrs []slog.Attr
	if lc.BuildID != "" {
		attrs = append(attrs, logfields.BuildID(lc.BuildID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, logfields.Stage(lc.Stage))
	}
	if lc.Task != "" {
		attrs = append(attrs, logfields.Task(lc.Task))
	}
	return attrs
}

// ContextHandler decorates records logged with a context (slog.InfoContext
// and friends) with that context's LogContext fields.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: next}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := GetContext(ctx).attrs(); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
