package bridge

import "strings"

// Kind is the native type of an argument or result.
type Kind uint8

const (
	// KindInvalid is the zero Kind.
	KindInvalid Kind = iota
	// KindFloat64 is a scalar double.
	KindFloat64
	// KindFloat64Array is an ordered sequence of doubles.
	KindFloat64Array
	// KindString is a byte string.
	KindString
)

var kindNames = [...]string{
	KindInvalid:      "invalid",
	KindFloat64:      "float64",
	KindFloat64Array: "float64[]",
	KindString:       "string",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Signature is the fixed calling convention of an entry point.
type Signature struct {
	Params []Kind
	Result Kind
}

// Sig builds a Signature. Sig(KindFloat64, KindFloat64, KindFloat64) is
// (float64, float64) float64: the last kind is the result.
func Sig(kinds ...Kind) Signature {
	if len(kinds) == 0 {
		return Signature{}
	}
	params := make([]Kind, len(kinds)-1)
	copy(params, kinds[:len(kinds)-1])
	return Signature{Params: params, Result: kinds[len(kinds)-1]}
}

// Arity returns the number of positional parameters.
func (s Signature) Arity() int {
	return len(s.Params)
}

// ParamNames returns the parameter kinds as strings.
func (s Signature) ParamNames() []string {
	names := make([]string, len(s.Params))
	for i, k := range s.Params {
		names[i] = k.String()
	}
	return names
}

func (s Signature) String() string {
	return "(" + strings.Join(s.ParamNames(), ", ") + ") " + s.Result.String()
}
