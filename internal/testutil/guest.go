package testutil

import (
	"github.com/tetratelabs/wazero/api"
)

// GuestImport is a host function the synthetic guest imports and re-exports.
type GuestImport struct {
	// Name is the import name in the host module.
	Name string
	// Export is the name of the guest trampoline that forwards to the import.
	Export  string
	Params  []api.ValueType
	Results []api.ValueType
}

// BuildGuest assembles a WASM module that:
//   - imports each GuestImport from hostModule
//   - exports a trampoline per import that forwards its params unchanged
//   - exports one page of "memory"
//   - exports "allocate" (param i32) (result i32), a bump allocator starting
//     at HeapBase that never frees
func BuildGuest(hostModule string, imports []GuestImport) []byte {
	n := uint32(len(imports)) //nolint:gosec // G115: test fixture size

	// Types: one per import, then allocate.
	types := uleb(n + 1)
	for _, imp := range imports {
		types = append(types, funcType(imp.Params, imp.Results)...)
	}
	types = append(types, funcType([]api.ValueType{api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32})...)

	importSec := uleb(n)
	for i, imp := range imports {
		importSec = append(importSec, name(hostModule)...)
		importSec = append(importSec, name(imp.Name)...)
		importSec = append(importSec, 0x00) // func
		importSec = append(importSec, uleb(uint32(i))...)
	}

	// Defined functions: allocate first, then trampolines.
	funcs := uleb(n + 1)
	funcs = append(funcs, uleb(n)...)
	for i := range imports {
		funcs = append(funcs, uleb(uint32(i))...)
	}

	memory := []byte{0x01, 0x00, 0x01} // one memory, min 1 page, no max

	heap := []byte{0x01, byte(api.ValueTypeI32), 0x01, 0x41} // mutable i32 = i32.const
	heap = append(heap, sleb(HeapBase)...)
	heap = append(heap, 0x0b)

	exportSec := uleb(n + 2)
	exportSec = append(exportSec, name("memory")...)
	exportSec = append(exportSec, 0x02, 0x00)
	exportSec = append(exportSec, name("allocate")...)
	exportSec = append(exportSec, 0x00)
	exportSec = append(exportSec, uleb(n)...)
	for i, imp := range imports {
		exportSec = append(exportSec, name(imp.Export)...)
		exportSec = append(exportSec, 0x00)
		exportSec = append(exportSec, uleb(n+1+uint32(i))...)
	}

	code := uleb(n + 1)
	// allocate: old := heap; heap += size; return old
	code = append(code, body([]byte{
		0x23, 0x00, // global.get 0
		0x23, 0x00, // global.get 0
		0x20, 0x00, // local.get 0
		0x6a,       // i32.add
		0x24, 0x00, // global.set 0
	})...)
	for i, imp := range imports {
		var instrs []byte
		for p := range imp.Params {
			instrs = append(instrs, 0x20)
			instrs = append(instrs, uleb(uint32(p))...)
		}
		instrs = append(instrs, 0x10)
		instrs = append(instrs, uleb(uint32(i))...)
		code = append(code, body(instrs)...)
	}

	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	wasm = append(wasm, section(0x01, types)...)
	wasm = append(wasm, section(0x02, importSec)...)
	wasm = append(wasm, section(0x03, funcs)...)
	wasm = append(wasm, section(0x05, memory)...)
	wasm = append(wasm, section(0x06, heap)...)
	wasm = append(wasm, section(0x07, exportSec)...)
	wasm = append(wasm, section(0x0a, code)...)
	return wasm
}

// HeapBase is the first address handed out by the guest's allocate.
const HeapBase = 1024

// NumericsGuest imports the four numeric exports from hostModule and
// re-exports them as "irr", "gamma", "gamma_dist" and "psd".
func NumericsGuest(hostModule string) []byte {
	f64, i32, i64 := api.ValueTypeF64, api.ValueTypeI32, api.ValueTypeI64
	return BuildGuest(hostModule, []GuestImport{
		{Name: "IRR", Export: "irr", Params: []api.ValueType{i32, i32}, Results: []api.ValueType{f64}},
		{Name: "gammaFunction", Export: "gamma", Params: []api.ValueType{f64}, Results: []api.ValueType{f64}},
		{Name: "gammaDistFunction", Export: "gamma_dist", Params: []api.ValueType{f64, f64}, Results: []api.ValueType{f64}},
		{Name: "PSD", Export: "psd", Results: []api.ValueType{i64}},
	})
}

func funcType(params, results []api.ValueType) []byte {
	out := []byte{0x60}
	out = append(out, uleb(uint32(len(params)))...)
	for _, p := range params {
		out = append(out, byte(p))
	}
	out = append(out, uleb(uint32(len(results)))...)
	for _, r := range results {
		out = append(out, byte(r))
	}
	return out
}

func body(instrs []byte) []byte {
	b := []byte{0x00} // no locals
	b = append(b, instrs...)
	b = append(b, 0x0b)
	return append(uleb(uint32(len(b))), b...)
}

func section(id byte, content []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(content)))...)
	return append(out, content...)
}

func name(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
