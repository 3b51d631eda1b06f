package logging

import (
	"context"
	"log/slog"
)

// runIDHandler stamps every record with the invocation's run id unless the
// record already carries one.
type runIDHandler struct {
	next  slog.Handler
	runID string
}

func newRunIDHandler(next slog.Handler, runID string) slog.Handler {
	if next == nil || runID == "" {
		return next
	}
	return &runIDHandler{next: next, runID: runID}
}

func (h *runIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *runIDHandler) Handle(ctx context.Context, record slog.Record) error {
	present := false
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == FieldRunID {
			present = true
			return false
		}
		return true
	})
	if !present {
		record = record.Clone()
		record.AddAttrs(slog.String(FieldRunID, h.runID))
	}
	return h.next.Handle(ctx, record)
}

func (h *runIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runIDHandler{next: h.next.WithAttrs(attrs), runID: h.runID}
}

func (h *runIDHandler) WithGroup(name string) slog.Handler {
	return &runIDHandler{next: h.next.WithGroup(name), runID: h.runID}
}
