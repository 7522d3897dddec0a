package logger

import (
	"io"
	"log/slog"
)

// Interface is the key-value logger injected into use cases, repositories and handlers.
type Interface interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Interface
}

type slogAdapter struct {
	l *slog.Logger
}

// NewLogger wraps the process logger.
func NewLogger() Interface {
	return slogAdapter{l: Get()}
}

// ForComponent wraps the process logger with a component attribute.
func ForComponent(name string) Interface {
	return slogAdapter{l: Get().With("component", name)}
}

// NewNop returns a logger that discards everything.
func NewNop() Interface {
	return slogAdapter{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (a slogAdapter) Debugw(msg string, keysAndValues ...any) {
	a.l.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Infow(msg string, keysAndValues ...any) {
	a.l.Info(msg, keysAndValues...)
}

func (a slogAdapter) Warnw(msg string, keysAndValues ...any) {
	a.l.Warn(msg, keysAndValues...)
}

func (a slogAdapter) Errorw(msg string, keysAndValues ...any) {
	a.l.Error(msg, keysAndValues...)
}

func (a slogAdapter) With(keysAndValues ...any) Interface {
	return slogAdapter{l: a.l.With(keysAndValues...)}
}
