package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	traceIDKey  contextKey = "trace_id"
	taskIDKey   contextKey = "task_id"
	workerIDKey contextKey = "worker_id"
)

// WithTraceID stores the request trace ID in ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext returns the trace ID stored in ctx or "".
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// WithTaskID stores the analysis task ID in ctx.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey, taskID)
}

// WithWorkerID stores the worker number in ctx.
func WithWorkerID(ctx context.Context, workerID int) context.Context {
	return context.WithValue(ctx, workerIDKey, workerID)
}

// ContextHandler decorates records with identifiers found in the context
// passed to the *Context logging methods.
type ContextHandler struct {
	next slog.Handler
}

var _ slog.Handler = (*ContextHandler)(nil)

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}

// Handle adds the context identifiers the record does not already carry.
func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if ctx == nil {
		return h.next.Handle(ctx, record)
	}

	present := make(map[string]bool, 3)
	record.Attrs(func(a slog.Attr) bool {
		switch contextKey(a.Key) {
		case traceIDKey, taskIDKey, workerIDKey:
			present[a.Key] = true
		}
		return true
	})

	if id, ok := ctx.Value(traceIDKey).(string); ok && id != "" && !present[string(traceIDKey)] {
		record.AddAttrs(slog.String(string(traceIDKey), id))
	}
	if id, ok := ctx.Value(taskIDKey).(string); ok && id != "" && !present[string(taskIDKey)] {
		record.AddAttrs(slog.String(string(taskIDKey), id))
	}
	if id, ok := ctx.Value(workerIDKey).(int); ok && !present[string(workerIDKey)] {
		record.AddAttrs(slog.Int(string(workerIDKey), id))
	}
	return h.next.Handle(ctx, record)
}
