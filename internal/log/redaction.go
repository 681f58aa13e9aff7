// Package log provides logging helpers shared across the module.
//
// The SASL handshake moves credentials and authentication tokens through
// the code that logs the most, so every logger handed to a transport
// should be wrapped in a RedactingHandler.
package log

import (
	"context"
	"log/slog"
	"strings"
)

// sensitiveKeys lists substrings of attribute keys whose values must never
// reach a log sink. Matching is case-insensitive.
var sensitiveKeys = []string{
	"password",
	"pass",
	"secret",
	"token",
	"response",
	"challenge",
	"credential",
	"authid",
}

// RedactingHandler is a slog.Handler that blanks sensitive attribute
// values before forwarding records.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next with redaction.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, redactAttr(a))
		return true
	})
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	clean.AddAttrs(attrs...)
	return h.next.Handle(ctx, clean)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted)}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		members := make([]any, len(group))
		for i, m := range group {
			members[i] = redactAttr(m)
		}
		return slog.Group(a.Key, members...)
	}
	key := strings.ToLower(a.Key)
	for _, sens := range sensitiveKeys {
		if strings.Contains(key, sens) {
			return slog.String(a.Key, "[REDACTED]")
		}
	}
	return a
}
