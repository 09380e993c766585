// Package logsink provides the diagnostic log sink used across scopeidx.
//
// A Sink never fails: emission errors from the underlying handler are
// swallowed by slog itself.
package logsink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is the variadic diagnostic interface consumed by core packages.
type Logger interface {
	Info(args ...any)
	Err(args ...any)
}

type Options struct {
	Format    string
	Level     slog.Level
	Component string
}

type Sink struct {
	l *slog.Logger
}

func New(w io.Writer, opts Options) *Sink {
	if w == nil {
		w = io.Discard
	}
	hopts := &slog.HandlerOptions{Level: opts.Level}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		h = slog.NewTextHandler(w, hopts)
	}
	l := slog.New(h)
	if c := strings.TrimSpace(opts.Component); c != "" {
		l = l.With("component", c)
	}
	return &Sink{l: l}
}

func Discard() *Sink {
	return New(io.Discard, Options{})
}

// With returns a sink that tags every entry with the given component.
func (s *Sink) With(component string) *Sink {
	if s == nil {
		return nil
	}
	return &Sink{l: s.l.With("component", component)}
}

func (s *Sink) Info(args ...any) {
	s.emit(slog.LevelInfo, args)
}

func (s *Sink) Err(args ...any) {
	s.emit(slog.LevelError, args)
}

func (s *Sink) emit(level slog.Level, args []any) {
	if s == nil || s.l == nil {
		return
	}
	s.l.Log(context.Background(), level, join(args))
}

func join(args []any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}
