package logging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m-mizutani/clog"
)

var (
	mu            sync.RWMutex
	defaultLogger = slog.New(clog.New())
)

// Default returns the process-wide logger
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
	slog.SetDefault(logger)
}

type ctxLoggerKey struct{}

// With embeds a logger into the context
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From extracts the logger from the context, falling back to Default
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
