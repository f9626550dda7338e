package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID identifies one vinscan invocation in the shared log file.
const FieldSessionID = "session_id"

// stampHandler adds the invocation ID and any correlation ID, request token
// or operation carried by the record's context. Keys the caller already set
// are left alone.
type stampHandler struct {
	next      slog.Handler
	sessionID string
	bound     map[string]bool
}

func newStampHandler(next slog.Handler, sessionID string) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &stampHandler{next: next, sessionID: sessionID}
}

func (h *stampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *stampHandler) Handle(ctx context.Context, record slog.Record) error {
	present := make(map[string]bool, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		present[attr.Key] = true
		return true
	})
	stamps := make([]slog.Attr, 0, 4)
	if h.sessionID != "" && !h.bound[FieldSessionID] {
		stamps = append(stamps, slog.String(FieldSessionID, h.sessionID))
	}
	for _, attr := range ContextFields(ctx) {
		if !present[attr.Key] && !h.bound[attr.Key] {
			stamps = append(stamps, attr)
		}
	}
	if len(stamps) > 0 {
		record = record.Clone()
		record.AddAttrs(stamps...)
	}
	return h.next.Handle(ctx, record)
}

func (h *stampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make(map[string]bool, len(h.bound)+len(attrs))
	for key := range h.bound {
		bound[key] = true
	}
	for _, attr := range attrs {
		bound[attr.Key] = true
	}
	return &stampHandler{next: h.next.WithAttrs(attrs), sessionID: h.sessionID, bound: bound}
}

func (h *stampHandler) WithGroup(name string) slog.Handler {
	return &stampHandler{next: h.next.WithGroup(name), sessionID: h.sessionID, bound: h.bound}
}
