// Package logger builds the process-wide slog logger from LOG_LEVEL and
// LOG_FORMAT.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Setup initializes the default logger. Output always goes to stderr.
func Setup() *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(os.Getenv("LOG_LEVEL"))}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L returns the default logger, calling Setup on first use.
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
