// Package jsonhost is an in-process host whose host-native values are
// decoded JSON values: float64 (or json.Number) for numbers, []any for
// arrays, string, bool and nil. It drives the export table from the CLI and
// from tests without a WASM runtime.
package jsonhost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/reglet-dev/reglet-numerics/bridge"
	"github.com/reglet-dev/reglet-numerics/domain/errors"
	"github.com/reglet-dev/reglet-numerics/exports"
)

// Host dispatches calls with JSON-shaped arguments to a registry.
// It is safe for concurrent use.
type Host struct {
	registry   *exports.Registry
	logger     *slog.Logger
	openScopes atomic.Int64
	peakScopes atomic.Int64
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger used for failed calls.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// New creates a Host over the registry. A nil registry uses exports.Default().
func New(registry *exports.Registry, opts ...Option) *Host {
	if registry == nil {
		registry = exports.Default()
	}
	h := &Host{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Call invokes name with positional args and returns the host value it
// produced: float64 for numbers, string for strings.
func (h *Host) Call(ctx context.Context, name string, args ...any) (any, error) {
	return h.registry.Invoke(ctx, name, &env{host: h, args: args})
}

// CallJSON invokes name with a JSON array of arguments and returns the JSON
// encoded result. Failures come back as an exports.ErrorResponse body with a
// nil error, so callers can forward the bytes unchanged. Non-finite numbers
// are encoded as the strings "NaN", "Infinity" and "-Infinity".
func (h *Host) CallJSON(ctx context.Context, name string, argsJSON []byte) ([]byte, error) {
	var args []any
	if len(bytes.TrimSpace(argsJSON)) > 0 {
		if err := json.Unmarshal(argsJSON, &args); err != nil {
			werr := &errors.WireFormatError{Err: err, Operation: "unmarshal", Type: "arguments"}
			return exports.ResponseFromError(werr).ToJSON(), nil
		}
	}

	result, err := h.Call(ctx, name, args...)
	if err != nil {
		h.logger.ErrorContext(ctx, "jsonhost: call failed", "function", name, "error", err)
		return exports.ResponseFromError(err).ToJSON(), nil
	}

	out, err := json.Marshal(toJSONValue(result))
	if err != nil {
		return nil, &errors.WireFormatError{Err: err, Operation: "marshal", Type: "result"}
	}
	return out, nil
}

// OpenScopes returns the number of handle scopes currently open.
func (h *Host) OpenScopes() int64 {
	return h.openScopes.Load()
}

// PeakScopes returns the largest number of scopes that were open at once.
func (h *Host) PeakScopes() int64 {
	return h.peakScopes.Load()
}

// Registry returns the registry the host dispatches to.
func (h *Host) Registry() *exports.Registry {
	return h.registry
}

func toJSONValue(v any) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

// env implements bridge.Env over one call's arguments.
type env struct {
	host *Host
	args []any
}

func (e *env) Args(n int) []bridge.Value {
	out := make([]bridge.Value, n)
	for i := range out {
		if i < len(e.args) {
			out[i] = e.args[i]
		} else {
			out[i] = bridge.Undefined
		}
	}
	return out
}

func (e *env) Float64(v bridge.Value) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return parseNumber(n)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func (e *env) ArrayLength(v bridge.Value) (int, error) {
	switch a := v.(type) {
	case []any:
		return len(a), nil
	case []float64:
		return len(a), nil
	default:
		return 0, fmt.Errorf("not an array: %T", v)
	}
}

func (e *env) Element(v bridge.Value, i int) (bridge.Value, error) {
	switch a := v.(type) {
	case []any:
		if i < 0 || i >= len(a) {
			return nil, fmt.Errorf("index %d out of range [0,%d)", i, len(a))
		}
		return a[i], nil
	case []float64:
		if i < 0 || i >= len(a) {
			return nil, fmt.Errorf("index %d out of range [0,%d)", i, len(a))
		}
		return a[i], nil
	default:
		return nil, fmt.Errorf("not an array: %T", v)
	}
}

func (e *env) CreateFloat64(f float64) (bridge.Value, error) {
	return f, nil
}

func (e *env) CreateString(s string) (bridge.Value, error) {
	return s, nil
}

func (e *env) OpenScope() (bridge.Scope, error) {
	n := e.host.openScopes.Add(1)
	for {
		peak := e.host.peakScopes.Load()
		if n <= peak || e.host.peakScopes.CompareAndSwap(peak, n) {
			break
		}
	}
	return &scope{host: e.host}, nil
}

type scope struct {
	host   *Host
	closed atomic.Bool
}

func (s *scope) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("scope already closed")
	}
	s.host.openScopes.Add(-1)
	return nil
}

// parseNumber coerces numeric strings, including the "NaN" and "Infinity"
// spellings produced by toJSONValue.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
