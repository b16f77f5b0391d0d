package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-numerics/exports"
	wazeroadapter "github.com/reglet-dev/reglet-numerics/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Executor owns a wazero runtime with the numerics host module installed.
type Executor struct {
	runtime       wazero.Runtime
	registry      *exports.Registry
	logger        *slog.Logger
	abiConstraint string
	moduleName    string
	adapterOpts   []wazeroadapter.AdapterOption
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = exports.Default()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if err := CheckABI(e.abiConstraint); err != nil {
		return nil, err
	}

	// Guest code stops when ctx is done. A host function that is already
	// running, such as an unbounded IRR scan, still runs to completion.
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	adapterOpts := append([]wazeroadapter.AdapterOption{wazeroadapter.WithLogger(e.logger)}, e.adapterOpts...)
	mod, err := wazeroadapter.RegisterWithRuntime(ctx, rt, e.registry, adapterOpts...)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host module: %w", err)
	}
	e.moduleName = mod.Name()

	return e, nil
}

// ModuleName returns the name guests import the exports from.
func (e *Executor) ModuleName() string {
	return e.moduleName
}

// Registry returns the export registry installed in the runtime.
func (e *Executor) Registry() *exports.Registry {
	return e.registry
}

// Close releases resources held by the executor.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Guest represents an instantiated WASM guest.
type Guest struct {
	module api.Module
}

// LoadGuest instantiates a WASM module. Guests may be loaded repeatedly;
// each gets a distinct module name.
func (e *Executor) LoadGuest(ctx context.Context, wasmBytes []byte) (*Guest, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	// An empty name lets several instances of the same guest coexist.
	cfg := wazero.NewModuleConfig().WithName("").WithStartFunctions()
	mod, err := e.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	// Reactor guests export _initialize; command guests are not started.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	e.logger.DebugContext(ctx, "host: guest loaded", "exports", len(mod.ExportedFunctionDefinitions()))
	return &Guest{module: mod}, nil
}

// Module exposes the underlying wazero module.
func (g *Guest) Module() api.Module {
	return g.module
}

// Close releases the guest instance.
func (g *Guest) Close(ctx context.Context) error {
	return g.module.Close(ctx)
}
