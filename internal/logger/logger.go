// Package logger owns process-wide zerolog setup and the context logger the
// runners share.
package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type loggerKey struct{}

// Init configures the process-wide logger: console output on stderr and the
// given minimum level (debug, info, warn, error). An empty level means info.
// The CLI calls this once at startup; library embedders that skip it keep
// zerolog's defaults.
func Init(level string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level %q: %w", level, err)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339Nano,
	})
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// FromContext returns the logger stored in the context, or the process logger
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &log.Logger
	}
	if l, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok {
		return l
	}
	return &log.Logger
}

// WithContext returns a new context with the given logger
func WithContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithValues returns a new logger with the given key/value pairs attached
func WithValues(l *zerolog.Logger, keysAndValues ...interface{}) *zerolog.Logger {
	if len(keysAndValues)%2 != 0 {
		keysAndValues = append(keysAndValues, "MISSING_VALUE")
	}
	builder := l.With()
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = "INVALID_KEY"
		}
		builder = builder.Interface(key, keysAndValues[i+1])
	}
	newLogger := builder.Logger()
	return &newLogger
}

// WithError returns a new logger with the given error attached
func WithError(l *zerolog.Logger, err error) *zerolog.Logger {
	if err == nil {
		return l
	}
	newLogger := l.With().Err(err).Logger()
	return &newLogger
}
