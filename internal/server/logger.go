// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/lkrweb/accounts/internal/config"
)

// newLogger builds a logger from the log config: tinted text for humans,
// JSON for log shippers.
func newLogger(w io.Writer, cfg *config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{Level: opts.Level}))
}

// parseLevel maps the configured level string to a slog level. Unknown
// values fall back to info rather than failing startup.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogger installs the configured logger as the process default.
func setupLogger(cfg *config.LogConfig) {
	slog.SetDefault(newLogger(os.Stdout, cfg))
}
