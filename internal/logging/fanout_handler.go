package logging

import (
	"context"
	"log/slog"
)

// teeHandler forwards each record to every child handler that accepts its level.
type teeHandler struct {
	children []slog.Handler
}

func newTeeHandler(handlers ...slog.Handler) slog.Handler {
	var children []slog.Handler
	for _, h := range handlers {
		if h != nil {
			children = append(children, h)
		}
	}
	switch len(children) {
	case 0:
		return NoopHandler{}
	case 1:
		return children[0]
	}
	return &teeHandler{children: children}
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, child := range t.children {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, child := range t.children {
		if !child.Enabled(ctx, record.Level) {
			continue
		}
		if err := child.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{children: t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{children: t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })}
}

func (t *teeHandler) each(fn func(slog.Handler) slog.Handler) []slog.Handler {
	out := make([]slog.Handler, len(t.children))
	for i, child := range t.children {
		out[i] = fn(child)
	}
	return out
}
