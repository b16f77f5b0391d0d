package bridge

import (
	"bytes"
	"fmt"
	"math"

	"github.com/reglet-dev/reglet-numerics/domain/errors"
)

// Marshaller decodes entry point arguments and encodes results.
//
// The zero Marshaller is permissive: a host value that cannot be read as a
// number decodes to NaN, and an array whose length cannot be read decodes as
// empty. With Strict set, the same failures return a *errors.ArgumentError.
type Marshaller struct {
	// Function names the entry point in errors.
	Function string

	// Strict turns decode failures into errors.
	Strict bool
}

// Float64 decodes a host scalar.
func (m Marshaller) Float64(env Env, v Value) (float64, error) {
	return m.float64(env, v, -1)
}

// ArgFloat64 decodes args[i] as a scalar.
func (m Marshaller) ArgFloat64(env Env, args []Value, i int) (float64, error) {
	return m.float64(env, arg(args, i), i)
}

func (m Marshaller) float64(env Env, v Value, pos int) (float64, error) {
	f, err := env.Float64(v)
	if err != nil {
		if m.Strict {
			return 0, m.argErr(pos, KindFloat64, err)
		}
		return math.NaN(), nil
	}
	return f, nil
}

// Float64Array decodes a host array into a slice sized exactly to its length.
// Each element is read inside its own handle scope.
func (m Marshaller) Float64Array(env Env, v Value) ([]float64, error) {
	return m.float64Array(env, v, -1)
}

// ArgFloat64Array decodes args[i] as an array.
func (m Marshaller) ArgFloat64Array(env Env, args []Value, i int) ([]float64, error) {
	return m.float64Array(env, arg(args, i), i)
}

func (m Marshaller) float64Array(env Env, v Value, pos int) ([]float64, error) {
	n, err := env.ArrayLength(v)
	if err == nil && n < 0 {
		err = fmt.Errorf("negative length %d", n)
	}
	if err != nil {
		if m.Strict {
			return nil, m.argErr(pos, KindFloat64Array, err)
		}
		return []float64{}, nil
	}

	out := make([]float64, n)
	for i := range out {
		f, err := m.element(env, v, i)
		if err != nil {
			if m.Strict {
				return nil, m.argErr(pos, KindFloat64Array, fmt.Errorf("element %d: %w", i, err))
			}
			f = math.NaN()
		}
		out[i] = f
	}
	return out, nil
}

func (m Marshaller) element(env Env, v Value, i int) (float64, error) {
	var f float64
	err := WithScope(env, func() error {
		elem, err := env.Element(v, i)
		if err != nil {
			return err
		}
		f, err = env.Float64(elem)
		return err
	})
	return f, err
}

// EncodeFloat64 creates a fresh host number.
func (m Marshaller) EncodeFloat64(env Env, f float64) (Value, error) {
	v, err := env.CreateFloat64(f)
	if err != nil {
		return nil, fmt.Errorf("%s: encode float64: %w", m.Function, err)
	}
	return v, nil
}

// EncodeString creates a host string.
func (m Marshaller) EncodeString(env Env, s string) (Value, error) {
	v, err := env.CreateString(s)
	if err != nil {
		return nil, fmt.Errorf("%s: encode string: %w", m.Function, err)
	}
	return v, nil
}

// EncodeCString creates a host string from zero-terminated bytes. The length
// ends at the first NUL, or at the end of b when there is none.
func (m Marshaller) EncodeCString(env Env, b []byte) (Value, error) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return m.EncodeString(env, string(b))
}

func (m Marshaller) argErr(pos int, want Kind, err error) error {
	return &errors.ArgumentError{Err: err, Function: m.Function, Expected: want.String(), Position: pos}
}

func arg(args []Value, i int) Value {
	if i < 0 || i >= len(args) {
		return Undefined
	}
	return args[i]
}
