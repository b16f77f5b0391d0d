package bridge

// Value is an opaque host-native value. Only the Env that produced it knows
// its concrete representation.
type Value any

// undefined is the value of an argument position the host did not supply.
type undefined struct{}

// String implements fmt.Stringer.
func (undefined) String() string { return "undefined" }

// Undefined stands in for a missing positional argument.
var Undefined Value = undefined{}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v Value) bool {
	_, ok := v.(undefined)
	return ok
}

// Env is the host runtime as seen by one call of a native entry point.
// Implementations are call-scoped and need not be safe for concurrent use.
type Env interface {
	// Args returns exactly n positional arguments. Positions the host did
	// not supply are Undefined; extra host arguments are ignored.
	Args(n int) []Value

	// Float64 reads a host numeric value.
	Float64(v Value) (float64, error)

	// ArrayLength reads the length of a host array value.
	ArrayLength(v Value) (int, error)

	// Element returns element i of a host array value.
	Element(v Value, i int) (Value, error)

	// CreateFloat64 creates a fresh host numeric value.
	CreateFloat64(f float64) (Value, error)

	// CreateString creates a host string value.
	CreateString(s string) (Value, error)

	// OpenScope opens a handle scope. Values created inside are released
	// when the scope is closed.
	OpenScope() (Scope, error)
}

// Scope is an open handle scope.
type Scope interface {
	Close() error
}

// NopScope is a Scope for hosts without handle lifetime tracking.
type NopScope struct{}

// Close implements Scope.
func (NopScope) Close() error { return nil }

// WithScope runs fn inside a fresh scope and always closes it. An error
// from fn wins over an error from Close.
func WithScope(env Env, fn func() error) (err error) {
	scope, err := env.OpenScope()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := scope.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn()
}
