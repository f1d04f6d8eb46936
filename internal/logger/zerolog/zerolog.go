// Package zerolog configures the process-wide zerolog logger and exposes the
// request-scoped logger installed by middleware.LoggingMiddleware.
package zerolog

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and writes to stdout, as JSON unless console is set.
// Unknown levels fall back to info.
func Setup(level string, console bool) {
	SetupWithWriter(level, os.Stdout, console)
}

// SetupWithWriter is Setup with an explicit sink. Console output is meant for local debugging.
func SetupWithWriter(level string, w io.Writer, console bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// FromContext returns the logger stored in ctx, or the global logger when none is set.
func FromContext(ctx context.Context) *zerolog.Logger {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return logger
}
