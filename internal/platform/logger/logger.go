package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/vocabquest-api/internal/config"
)

// ParseLevel maps a configured level name onto a slog.Level (case-insensitive).
// The boolean is false for unknown names, in which case info is returned.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup initializes the application's logging system from the server config.
// It creates a structured JSON logger on stdout, installs it as the slog
// default and returns it.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	return SetupWithWriter(cfg, os.Stdout)
}

// SetupWithWriter behaves like Setup but writes to w.
func SetupWithWriter(cfg config.ServerConfig, w io.Writer) (*slog.Logger, error) {
	level, ok := ParseLevel(cfg.LogLevel)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			slog.String("configured_level", cfg.LogLevel),
			slog.String("default_level", "info"))
	}

	// Allows package-level slog calls (slog.Info, slog.Error) across the app
	slog.SetDefault(logger)

	return logger, nil
}
