package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a slog.Logger for the configured environment and level.
// Production uses JSON handler; otherwise text handler.
// LogLevel may be: debug, info, warn, error (default: info).
func (c *Config) NewLogger() *slog.Logger {
	return newLogger(os.Stdout, c.IsProduction(), c.LogLevel)
}

func newLogger(w io.Writer, production bool, levelName string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if production {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
