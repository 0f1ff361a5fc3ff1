package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// MultiHandler sends each record to every handler enabled for its level.
// The console handler and the optional JSON file sink are combined this way.
func MultiHandler(handlers ...slog.Handler) slog.Handler {
	sinks := make([]slog.Handler, 0, len(handlers))
	for _, handler := range handlers {
		if handler != nil {
			sinks = append(sinks, handler)
		}
	}
	switch len(sinks) {
	case 0:
		return slog.NewTextHandler(io.Discard, nil)
	case 1:
		return sinks[0]
	}
	return &teeHandler{sinks: sinks}
}

type teeHandler struct {
	sinks []slog.Handler
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range h.sinks {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, sink := range h.sinks {
		if !sink.Enabled(ctx, record.Level) {
			continue
		}
		// Each sink gets its own copy; handlers may retain attrs.
		if err := sink.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(sink slog.Handler) slog.Handler { return sink.WithAttrs(attrs) })
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.each(func(sink slog.Handler) slog.Handler { return sink.WithGroup(name) })
}

func (h *teeHandler) each(fn func(slog.Handler) slog.Handler) slog.Handler {
	sinks := make([]slog.Handler, len(h.sinks))
	for i, sink := range h.sinks {
		sinks[i] = fn(sink)
	}
	return &teeHandler{sinks: sinks}
}
