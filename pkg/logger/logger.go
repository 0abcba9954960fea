// Package logger provides opinionated logging capabilities for the memostack system
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	writers []io.Writer
	source  bool
}

// New creates a *slog.Logger. The default handler is slog's text handler at
// Info level writing to stdout; see the With* options for pretty CLI output,
// JSON output, level, and writer overrides.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:   slog.LevelInfo,
		writers: []io.Writer{os.Stdout},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	writer := io.MultiWriter(cfg.writers...)

	var handler slog.Handler
	switch {
	case cfg.pretty:
		charm := charmlog.NewWithOptions(writer, charmlog.Options{
			ReportCaller:    cfg.source,
			ReportTimestamp: true,
			Level:           charmLevel(cfg.level),
		})
		handler = charm
	case cfg.json:
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})
	default:
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})
	}

	return slog.New(handler)
}

func charmLevel(level slog.Level) charmlog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmlog.DebugLevel
	case level <= slog.LevelInfo:
		return charmlog.InfoLevel
	case level <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
