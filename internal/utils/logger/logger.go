// Package logger builds the application logger for the configured
// environment.
package logger

import (
	"os"

	"golang.org/x/exp/slog"

	"passkeeper/internal/app/client/config"
)

// New returns a slog.Logger tuned for env: local gets human-readable
// text output at debug level, dev gets JSON at debug, everything else
// gets JSON at info.
func New(env string) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
}
