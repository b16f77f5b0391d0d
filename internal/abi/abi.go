// Package abi holds the low-level encoding shared by the wazero adapter and
// the guest executor: packed pointer/length pairs and little-endian f64
// arrays in linear memory.
package abi

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Float64Size is the width of one array element in guest memory.
const Float64Size = 8

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << 32) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its original pointer and length.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32) //nolint:gosec // G115: packed format stores 32-bit values
	length = uint32(packed)    //nolint:gosec // G115: packed format stores 32-bit values
	return ptr, length
}

// EncodeFloat64s lays values out as consecutive little-endian f64.
func EncodeFloat64s(values []float64) []byte {
	buf := make([]byte, len(values)*Float64Size)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*Float64Size:], math.Float64bits(v))
	}
	return buf
}

// ElementOffset returns the byte offset of element i of an f64 array at ptr,
// and false when the offset overflows 32 bits.
func ElementOffset(ptr uint32, i int) (uint32, bool) {
	off := uint64(ptr) + uint64(i)*Float64Size
	if i < 0 || off > math.MaxUint32 {
		return 0, false
	}
	return uint32(off), true
}
