package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-numerics/bridge"
	"github.com/reglet-dev/reglet-numerics/exports"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultMaxArrayLength bounds the element count of an array argument.
const DefaultMaxArrayLength = 1 << 20

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives adapter failures. Default is slog.Default().
	Logger *slog.Logger

	// ModuleName is the host module name. Default is the registry's module name.
	ModuleName string

	// CustomHandlers allows adding wazero-specific functions next to the
	// registry exports.
	CustomHandlers []CustomHandler

	// MaxArrayLength limits the element count of array arguments read from
	// guest memory.
	MaxArrayLength uint32
}

// CustomHandler represents a raw wazero function exported from the same
// host module.
type CustomHandler struct {
	// Name is the exported function name.
	Name string

	// Handler is the wazero GoModuleFunc implementation.
	Handler api.GoModuleFunc

	// ParamTypes are the WASM parameter types.
	ParamTypes []api.ValueType

	// ResultTypes are the WASM result types.
	ResultTypes []api.ValueType
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxArrayLength sets the maximum element count of array arguments.
func WithMaxArrayLength(n uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxArrayLength = n
	}
}

// WithLogger sets the logger for adapter failures.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = l
	}
}

// WithCustomHandler adds a custom wazero handler.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		MaxArrayLength: DefaultMaxArrayLength,
	}
}

// ValueTypes maps a signature onto WASM parameter and result types:
//
//	float64   -> f64
//	float64[] -> i32 ptr, i32 len (elements, little-endian f64)
//	string    -> i32 ptr, i32 len as a parameter, packed i64 ptr<<32|len as a result
func ValueTypes(sig bridge.Signature) (params, results []api.ValueType, err error) {
	for i, k := range sig.Params {
		switch k {
		case bridge.KindFloat64:
			params = append(params, api.ValueTypeF64)
		case bridge.KindFloat64Array, bridge.KindString:
			params = append(params, api.ValueTypeI32, api.ValueTypeI32)
		default:
			return nil, nil, fmt.Errorf("parameter %d: unsupported kind %s", i, k)
		}
	}
	switch sig.Result {
	case bridge.KindFloat64:
		results = []api.ValueType{api.ValueTypeF64}
	case bridge.KindString:
		results = []api.ValueType{api.ValueTypeI64}
	default:
		return nil, nil, fmt.Errorf("result: unsupported kind %s", sig.Result)
	}
	return params, results, nil
}

// RegisterWithRuntime instantiates a host module exporting every entry of
// the registry under its own name.
//
// Each function is wrapped to:
//   - Build a bridge.Env over the wazero stack and the caller's memory
//   - Dispatch through registry.Invoke
//   - Write the returned value back to the stack
//
// An error returned by an entry point aborts the guest call: the wrapper
// panics with the error and wazero returns it from the guest's Call.
//
//	reg := exports.Default()
//	mod, err := wazero.RegisterWithRuntime(ctx, runtime, reg)
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *exports.Registry, opts ...AdapterOption) (api.Module, error) {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ModuleName == "" {
		cfg.ModuleName = registry.ModuleName()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	for _, exp := range registry.Exports() {
		params, results, err := ValueTypes(exp.Signature)
		if err != nil {
			return nil, fmt.Errorf("export %q: %w", exp.Name, err)
		}
		name, sig := exp.Name, exp.Signature // capture for closure
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				handleCall(ctx, mod, stack, registry, name, sig, &cfg)
			}), params, results).
			WithName(name).
			Export(name)
	}

	for _, ch := range cfg.CustomHandlers {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	return builder.Instantiate(ctx)
}

// handleCall runs one export on behalf of a guest.
func handleCall(ctx context.Context, mod api.Module, stack []uint64, registry *exports.Registry, name string, sig bridge.Signature, cfg *AdapterConfig) {
	guest := GetGuestName(ctx, mod)
	ctx = WithGuestName(ctx, guest)
	env := newStackEnv(ctx, mod, stack, sig, cfg.MaxArrayLength)

	result, err := registry.Invoke(ctx, name, env)
	if err != nil {
		cfg.Logger.ErrorContext(ctx, "wazero: export call failed", "function", name, "guest", guest, "error", err)
		panic(err)
	}

	slot, err := env.resultSlot(result)
	if err != nil {
		cfg.Logger.ErrorContext(ctx, "wazero: unexpected result", "function", name, "error", err)
		panic(err)
	}
	stack[0] = slot
}
