package logger

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
)

// sourceHandler attaches the caller location to records at or above minLevel. The wrapped
// handler must not set AddSource itself.
type sourceHandler struct {
	handler  slog.Handler
	minLevel slog.Level
}

// NewSourceHandler wraps handler so that records of minLevel and above carry a source attribute
// pointing at the application code that logged them, skipping slog and this package.
func NewSourceHandler(handler slog.Handler, minLevel slog.Level) slog.Handler {
	return &sourceHandler{handler: handler, minLevel: minLevel}
}

func (h *sourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *sourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.minLevel {
		if src := callerSource(); src != nil {
			r.AddAttrs(slog.Any(slog.SourceKey, src))
		}
	}
	return h.handler.Handle(ctx, r)
}

func (h *sourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sourceHandler{handler: h.handler.WithAttrs(attrs), minLevel: h.minLevel}
}

func (h *sourceHandler) WithGroup(name string) slog.Handler {
	return &sourceHandler{handler: h.handler.WithGroup(name), minLevel: h.minLevel}
}

func callerSource() *slog.Source {
	var pcs [16]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !isLoggingFrame(f.Function, f.File) {
			return &slog.Source{Function: f.Function, File: trimSourcePath(f.File), Line: f.Line}
		}
		if !more {
			return nil
		}
	}
}

func isLoggingFrame(function, file string) bool {
	if strings.HasPrefix(function, "log/slog.") {
		return true
	}
	return strings.Contains(file, "/internal/shared/logger/") && !strings.HasSuffix(file, "_test.go")
}

// trimSourcePath keeps the module-relative part of file, e.g. internal/application/...
func trimSourcePath(file string) string {
	for _, marker := range []string{"/internal/", "/cmd/"} {
		if i := strings.LastIndex(file, marker); i >= 0 {
			return file[i+1:]
		}
	}
	return file
}
