package log

import (
	"log/slog"
	"os"
)

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// DefaultConfig returns sensible defaults for logging
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

// New creates a component-scoped slog.Logger. Every record it emits
// carries a "component" attribute.
func New(config Config) *slog.Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.Level,
		})
	}
	return slog.New(handler).With(FieldComponent, config.Component)
}

// SetDefault installs a logger built from config as the process-wide
// default, so packages that log via the slog package functions pick up
// the same handler.
func SetDefault(config Config) *slog.Logger {
	logger := New(config)
	slog.SetDefault(logger)
	return logger
}
