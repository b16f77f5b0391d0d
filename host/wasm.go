package host

import (
	"context"
	"fmt"

	"github.com/reglet-dev/reglet-numerics/domain/errors"
	"github.com/reglet-dev/reglet-numerics/internal/abi"
	"github.com/tetratelabs/wazero/api"
)

// Call invokes a guest export with raw WASM values.
func (g *Guest) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	f := g.module.ExportedFunction(name)
	if f == nil {
		return nil, &errors.NotFoundError{Name: name}
	}
	return f.Call(ctx, params...)
}

// CallFloat64 invokes a guest export taking f64 params and returning one f64.
func (g *Guest) CallFloat64(ctx context.Context, name string, args ...float64) (float64, error) {
	params := make([]uint64, len(args))
	for i, a := range args {
		params[i] = api.EncodeF64(a)
	}
	results, err := g.Call(ctx, name, params...)
	if err != nil {
		return 0, err
	}
	if len(results) != 1 {
		return 0, fmt.Errorf("export %q returned %d results, want 1", name, len(results))
	}
	return api.DecodeF64(results[0]), nil
}

// CallArray writes values into guest memory and invokes a guest export
// taking (i32 ptr, i32 len) and returning one f64.
func (g *Guest) CallArray(ctx context.Context, name string, values []float64) (float64, error) {
	ptr, err := g.WriteFloat64s(ctx, values)
	if err != nil {
		return 0, err
	}
	results, err := g.Call(ctx, name, api.EncodeU32(ptr), uint64(len(values)))
	if err != nil {
		return 0, err
	}
	if len(results) != 1 {
		return 0, fmt.Errorf("export %q returned %d results, want 1", name, len(results))
	}
	return api.DecodeF64(results[0]), nil
}

// CallString invokes a guest export that returns a packed string.
func (g *Guest) CallString(ctx context.Context, name string, params ...uint64) (string, error) {
	results, err := g.Call(ctx, name, params...)
	if err != nil {
		return "", err
	}
	if len(results) != 1 {
		return "", fmt.Errorf("export %q returned %d results, want 1", name, len(results))
	}
	return g.ReadString(results[0])
}

// WriteFloat64s copies values into memory obtained from the guest's
// "allocate" export and returns the address of the first element.
func (g *Guest) WriteFloat64s(ctx context.Context, values []float64) (uint32, error) {
	if len(values) == 0 {
		return 0, nil
	}
	data := abi.EncodeFloat64s(values)

	allocate := g.module.ExportedFunction("allocate")
	if allocate == nil {
		return 0, fmt.Errorf("guest does not export 'allocate'")
	}
	res, err := allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(res) == 0 {
		return 0, fmt.Errorf("allocate returned no results")
	}
	ptr := api.DecodeU32(res[0])
	if !g.module.Memory().Write(ptr, data) {
		return 0, &errors.MemoryError{Op: "write", Offset: ptr, Length: uint32(len(data))} //nolint:gosec // G115: bounded by allocate
	}
	return ptr, nil
}

// ReadString reads a packed ptr<<32|len string from guest memory.
func (g *Guest) ReadString(packed uint64) (string, error) {
	ptr, length := abi.UnpackPtrLen(packed)
	if length == 0 {
		return "", nil
	}
	data, ok := g.module.Memory().Read(ptr, length)
	if !ok {
		return "", &errors.MemoryError{Op: "read", Offset: ptr, Length: length}
	}
	// Copy so the result survives later guest memory growth.
	return string(data), nil
}
