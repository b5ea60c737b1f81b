package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"mrp/internal/config"
)

// New builds the process logger from config, writing to stdout.
func New(cfg *config.Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit sink; tests pass a buffer.
func NewWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	level, format, component, source := "info", "text", "", false
	if cfg != nil {
		level, format, component, source = cfg.LogLevel, cfg.LogFormat, cfg.LogComponent, cfg.LogSource
	}

	text := !strings.EqualFold(format, "json")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: source,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && text && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.DateTime))
			}
			return a
		},
	}

	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	if component != "" {
		l = l.With("component", component)
	}
	return l
}

func parseLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
