// Package wazero registers the export table as a wazero host module.
//
// A WebAssembly guest plays the host runtime: it imports the exports by name
// from the host module and calls them with the WASM calling convention
// below. The adapter turns each call into a bridge.Env so entry points stay
// unaware of wazero.
//
//   - float64 arguments and results travel as f64
//   - float64[] arguments travel as (i32 ptr, i32 len), len counting
//     little-endian f64 elements in the guest's memory
//   - string results travel as a packed i64 (ptr<<32 | len) written into
//     memory obtained from the guest's "allocate" export
//
// # Basic Usage
//
//	runtime := wazero.NewRuntime(ctx)
//	_, err := wazeroadapter.RegisterWithRuntime(ctx, runtime, exports.Default())
//
// The guest side, in WAT:
//
//	(import "numerics" "gammaFunction" (func $gamma (param f64) (result f64)))
//	(import "numerics" "IRR" (func $irr (param i32 i32) (result f64)))
//
// # Custom Handlers
//
// Functions that do not come from the registry can share the host module:
//
//	wazeroadapter.RegisterWithRuntime(ctx, runtime, reg,
//	    wazeroadapter.WithCustomHandler(wazeroadapter.CustomHandler{
//	        Name:        "log_value",
//	        Handler:     logValue,
//	        ParamTypes:  []api.ValueType{api.ValueTypeF64},
//	        ResultTypes: []api.ValueType{},
//	    }),
//	)
package wazero
