// Package host runs WebAssembly guests against the numeric export table.
//
// It owns the wazero runtime, installs WASI and the numerics host module,
// and offers helpers for the guest side of the calling convention: writing
// f64 arrays into guest memory and reading packed string results back.
package host
