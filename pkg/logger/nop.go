package logger

import (
	"context"
	"log/slog"
)

// nopHandler discards everything and reports disabled for all levels.
type nopHandler struct{}

// Nop returns a *slog.Logger that discards all output. Useful as a default
// in constructors and in tests.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
