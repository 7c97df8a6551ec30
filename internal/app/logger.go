package app

import (
	"log/slog"
	"os"
)

// NewLogger returns a configured slog.Logger based on configuration.
// JSON output carries source locations for log aggregation; the text
// handler stays terse for local runs.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
		return slog.New(handler).With(slog.String("service", "spaceworks"))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
