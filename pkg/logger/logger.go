// Package logger provides a slog.Handler that copies request-scoped values
// from the context onto every record.
package logger

import (
	"context"
	"log/slog"

	"github.com/abgdnv/shopadmin/pkg/web"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// extractor pulls one attribute out of a context.
type extractor func(ctx context.Context) (slog.Attr, bool)

var extractors = []extractor{
	func(ctx context.Context) (slog.Attr, bool) {
		sc := trace.SpanContextFromContext(ctx)
		return slog.String("trace_id", sc.TraceID().String()), sc.IsValid()
	},
	func(ctx context.Context) (slog.Attr, bool) {
		id := middleware.GetReqID(ctx)
		return slog.String("request_id", id), id != ""
	},
	fromKey("session_id", web.GetSessionID),
	fromKey("subject", web.GetSubject),
}

func fromKey(name string, get func(context.Context) (string, bool)) extractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v, ok := get(ctx)
		return slog.String(name, v), ok && v != ""
	}
}

// ContextHandler stamps trace_id, request_id, session_id and subject when the
// context carries them.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: handler}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, extract := range extractors {
		if attr, ok := extract(ctx); ok {
			r.AddAttrs(attr)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.Handler.WithAttrs(attrs))
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return NewContextHandler(h.Handler.WithGroup(name))
}
