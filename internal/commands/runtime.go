package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// DefaultCommandTimeout bounds a single command execution.
const DefaultCommandTimeout = 30 * time.Second

// TimeoutHinted is implemented by messages whose work scales with the stored
// record count, such as cascade sweeps, and need more than the default.
type TimeoutHinted interface {
	CommandTimeout() time.Duration
}

// EnsureContext returns a non-nil context, falling back to context.Background when nil.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout applies the provided timeout unless it is zero or negative.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// resolveTimeout picks the execution timeout for msg. A timeout set through
// WithTimeout wins; otherwise a positive message hint replaces the default.
func resolveTimeout(msg any, configured time.Duration, explicit bool) time.Duration {
	if explicit {
		return configured
	}
	if hinted, ok := msg.(TimeoutHinted); ok {
		if hint := hinted.CommandTimeout(); hint > 0 {
			return hint
		}
	}
	return configured
}

// EnsureLogger returns a usable logger, defaulting to a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
