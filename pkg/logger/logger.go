package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLevel  = "LOG_LEVEL"
	EnvFormat = "ZAIKIT_LOG_FORMAT"
)

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

func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init installs the default logger on stderr. Output stays quiet below
// warn unless LOG_LEVEL says otherwise, so example output is not mixed
// with request logs.
func Init() {
	level := slog.LevelWarn
	if v := os.Getenv(EnvLevel); v != "" {
		level = ParseLevel(v)
	}
	slog.SetDefault(New(os.Stderr, level, os.Getenv(EnvFormat)))
}
