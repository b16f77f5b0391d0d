package wazero

import (
	"context"
	"fmt"

	"github.com/reglet-dev/reglet-numerics/bridge"
	"github.com/reglet-dev/reglet-numerics/domain/errors"
	"github.com/reglet-dev/reglet-numerics/internal/abi"
	"github.com/tetratelabs/wazero/api"
)

// Host values as seen by entry points running under wazero.
type (
	// f64Slot is a scalar passed or returned on the stack.
	f64Slot uint64

	// arrayRef is an f64 array in guest memory.
	arrayRef struct {
		ptr    uint32
		length uint32
	}

	// elementRef is one element of an arrayRef.
	elementRef struct {
		offset uint32
	}

	// stringRef is a string in guest memory, packed for an i64 result.
	stringRef uint64
)

// stackEnv implements bridge.Env over one host function call.
type stackEnv struct {
	ctx      context.Context
	mod      api.Module
	args     []bridge.Value
	maxArray uint32
}

func newStackEnv(ctx context.Context, mod api.Module, stack []uint64, sig bridge.Signature, maxArray uint32) *stackEnv {
	// Arguments are decoded before the result overwrites stack[0].
	args := make([]bridge.Value, 0, len(sig.Params))
	j := 0
	for _, k := range sig.Params {
		switch k {
		case bridge.KindFloat64:
			args = append(args, f64Slot(stack[j]))
			j++
		default:
			args = append(args, arrayRef{
				ptr:    api.DecodeU32(stack[j]),
				length: api.DecodeU32(stack[j+1]),
			})
			j += 2
		}
	}
	return &stackEnv{ctx: ctx, mod: mod, args: args, maxArray: maxArray}
}

func (e *stackEnv) Args(n int) []bridge.Value {
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

func (e *stackEnv) Float64(v bridge.Value) (float64, error) {
	switch x := v.(type) {
	case f64Slot:
		return api.DecodeF64(uint64(x)), nil
	case elementRef:
		mem, err := e.memory()
		if err != nil {
			return 0, err
		}
		f, ok := mem.ReadFloat64Le(x.offset)
		if !ok {
			return 0, &errors.MemoryError{Op: "read", Offset: x.offset, Length: abi.Float64Size}
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func (e *stackEnv) ArrayLength(v bridge.Value) (int, error) {
	a, ok := v.(arrayRef)
	if !ok {
		return 0, fmt.Errorf("not an array: %T", v)
	}
	if e.maxArray > 0 && a.length > e.maxArray {
		return 0, fmt.Errorf("array length %d exceeds maximum %d", a.length, e.maxArray)
	}
	return int(a.length), nil
}

func (e *stackEnv) Element(v bridge.Value, i int) (bridge.Value, error) {
	a, ok := v.(arrayRef)
	if !ok {
		return nil, fmt.Errorf("not an array: %T", v)
	}
	if i < 0 || uint64(i) >= uint64(a.length) {
		return nil, fmt.Errorf("index %d out of range [0,%d)", i, a.length)
	}
	off, ok := abi.ElementOffset(a.ptr, i)
	if !ok {
		return nil, &errors.MemoryError{Op: "read", Offset: a.ptr, Length: a.length * abi.Float64Size}
	}
	return elementRef{offset: off}, nil
}

func (e *stackEnv) CreateFloat64(f float64) (bridge.Value, error) {
	return f64Slot(api.EncodeF64(f)), nil
}

// CreateString copies s into guest memory through the guest's "allocate"
// export. The empty string is returned as a zero packed value without
// allocating.
func (e *stackEnv) CreateString(s string) (bridge.Value, error) {
	if s == "" {
		return stringRef(0), nil
	}
	mem, err := e.memory()
	if err != nil {
		return nil, err
	}
	allocate := e.mod.ExportedFunction("allocate")
	if allocate == nil {
		return nil, fmt.Errorf("guest module missing 'allocate' export")
	}
	results, err := allocate.Call(e.ctx, uint64(len(s)))
	if err != nil {
		return nil, fmt.Errorf("failed to call guest allocate: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("guest allocate returned no results")
	}
	ptr := api.DecodeU32(results[0])
	length := uint32(len(s)) //nolint:gosec // G115: bounded by guest memory size
	if !mem.Write(ptr, []byte(s)) {
		return nil, &errors.MemoryError{Op: "write", Offset: ptr, Length: length}
	}
	return stringRef(abi.PackPtrLen(ptr, length)), nil
}

// OpenScope returns a no-op scope: guest memory has no handle lifetimes.
func (e *stackEnv) OpenScope() (bridge.Scope, error) {
	return bridge.NopScope{}, nil
}

func (e *stackEnv) memory() (api.Memory, error) {
	if e.mod == nil || e.mod.Memory() == nil {
		return nil, fmt.Errorf("caller module has no memory")
	}
	return e.mod.Memory(), nil
}

// resultSlot converts an entry point result into the single result slot.
func (e *stackEnv) resultSlot(v bridge.Value) (uint64, error) {
	switch x := v.(type) {
	case f64Slot:
		return uint64(x), nil
	case stringRef:
		return uint64(x), nil
	default:
		return 0, fmt.Errorf("cannot return %T to guest", v)
	}
}
