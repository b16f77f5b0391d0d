package exports

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/reglet-dev/reglet-numerics/bridge"
	"github.com/reglet-dev/reglet-numerics/domain/errors"
)

// Middleware wraps an EntryPoint to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next EntryPoint) EntryPoint

// PanicRecoveryMiddleware converts a panic inside an entry point into a
// *errors.PanicError instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next EntryPoint) EntryPoint {
		return func(ctx context.Context, env bridge.Env) (v bridge.Value, err error) {
			defer func() {
				if r := recover(); r != nil {
					v = nil
					err = &errors.PanicError{Value: r, Function: FunctionName(ctx), Stack: debug.Stack()}
				}
			}()
			return next(ctx, env)
		}
	}
}

// LoggingMiddleware logs every call at debug level and failures at warn.
// A nil logger uses slog.Default().
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next EntryPoint) EntryPoint {
		return func(ctx context.Context, env bridge.Env) (bridge.Value, error) {
			l := logger
			if l == nil {
				l = slog.Default()
			}
			name := FunctionName(ctx)
			start := time.Now()
			v, err := next(ctx, env)
			if err != nil {
				l.WarnContext(ctx, "export call failed", "function", name, "duration", time.Since(start), "error", err)
				return v, err
			}
			l.DebugContext(ctx, "export call completed", "function", name, "duration", time.Since(start))
			return v, nil
		}
	}
}
