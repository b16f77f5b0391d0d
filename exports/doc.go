// Package exports holds the table that binds exported names to native entry
// points. It has no WASM runtime dependency: hosts (see infrastructure/wazero
// and infrastructure/jsonhost) translate their own calling convention into a
// bridge.Env and dispatch through Registry.Invoke.
package exports
