// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package logging builds the process-wide slog logger. Every record
// carries the service name and version; records logged with a context
// holding an active span also carry the trace and span ids.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// spanHandler decorates records with OpenTelemetry trace context.
// Service and version are attached once on the wrapped handler, not
// per record.
type spanHandler struct {
	next slog.Handler
}

func (h spanHandler) Handle(ctx context.Context, r slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", sc.TraceID().String()))
	}
	if sc.HasSpanID() {
		r.AddAttrs(slog.String("span_id", sc.SpanID().String()))
	}
	return h.next.Handle(ctx, r)
}

func (h spanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h spanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return spanHandler{next: h.next.WithAttrs(attrs)}
}

func (h spanHandler) WithGroup(name string) slog.Handler {
	return spanHandler{next: h.next.WithGroup(name)}
}

// Setup builds a logger writing to w in the given format ("json" or
// "text"; anything else means json). A nil w writes to stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var base slog.Handler
	if format == "text" {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	base = base.WithAttrs([]slog.Attr{
		slog.String("service", service),
		slog.String("version", version),
	})

	return slog.New(spanHandler{next: base})
}

// SetDefault installs a Setup logger as the slog default.
func SetDefault(service, version, format string) {
	slog.SetDefault(Setup(service, version, format, nil))
}
