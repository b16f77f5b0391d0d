// Package errors provides domain-specific error types for the numerics bridge.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/reglet-numerics/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Sentinel errors matched by the typed errors below through Is.
var (
	// ErrDomain marks inputs outside a kernel's valid domain.
	ErrDomain = stdErrors.New("argument outside function domain")

	// ErrNoConvergence marks root searches that hit their iteration cap.
	ErrNoConvergence = stdErrors.New("search did not converge")

	// ErrUnknownExport marks calls to names missing from the export table.
	ErrUnknownExport = stdErrors.New("unknown export")
)

// DetailedError is implemented by every error type in this package.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail returns the structured form of err. Errors that are not
// DetailedError anywhere in their chain are categorized as internal.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return entities.NewErrorDetail(entities.ErrorTypeInternal, err.Error())
}

// DomainError reports a kernel argument or result outside the valid domain.
type DomainError struct {
	Function string
	Param    string
	Value    float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s=%g outside function domain", e.Function, e.Param, e.Value)
}

// Is matches ErrDomain.
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// ToErrorDetail implements DetailedError.
func (e *DomainError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorTypeDomain, e.Error()).
		WithCode(e.Function).
		WithDetail("param", e.Param).
		WithDetail("value", e.Value)
}

// ConvergenceError reports an iterative search that ran out of iterations.
type ConvergenceError struct {
	Function   string
	Iterations int
	LastRate   float64 // rate reached when the search stopped
	LastValue  float64 // objective value at LastRate
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: no crossing after %d iterations (rate %g, value %g)",
		e.Function, e.Iterations, e.LastRate, e.LastValue)
}

// Is matches ErrNoConvergence.
func (e *ConvergenceError) Is(target error) bool {
	return target == ErrNoConvergence
}

// ToErrorDetail implements DetailedError.
func (e *ConvergenceError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorTypeConvergence, e.Error()).
		WithCode(e.Function).
		WithDetail("iterations", e.Iterations).
		WithDetail("last_rate", e.LastRate)
}

// ArgumentError reports a host value that could not be decoded.
type ArgumentError struct {
	Err      error
	Function string
	Expected string // kind the entry point wanted, e.g. "float64[]"
	Position int    // zero-based argument index, -1 when unknown
}

func (e *ArgumentError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s: argument %d: expected %s: %v", e.Function, e.Position, e.Expected, e.Err)
	}
	return fmt.Sprintf("%s: expected %s: %v", e.Function, e.Expected, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ArgumentError) ToErrorDetail() *entities.ErrorDetail {
	d := entities.NewErrorDetail(entities.ErrorTypeValidation, e.Error()).WithCode(e.Function)
	if e.Position >= 0 {
		d.WithDetail("position", e.Position)
	}
	return d.WithDetail("expected", e.Expected)
}

// NotFoundError reports a call to a name that is not in the export table.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown export: %q", e.Name)
}

// Is matches ErrUnknownExport.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrUnknownExport
}

// ToErrorDetail implements DetailedError.
func (e *NotFoundError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorTypeNotFound, e.Error()).WithCode(e.Name)
}

// PanicError wraps a panic recovered from an entry point.
type PanicError struct {
	Value    any
	Function string
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Function, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ToErrorDetail implements DetailedError.
func (e *PanicError) ToErrorDetail() *entities.ErrorDetail {
	d := entities.NewErrorDetail(entities.ErrorTypePanic, e.Error()).WithCode(e.Function)
	d.Stack = e.Stack
	return d
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorTypeConfig, e.Error()).WithCode(e.Field)
}

// SchemaError represents a schema generation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorTypeInternal, e.Error()).WithCode("schema")
}

// MemoryError represents an out-of-range access to guest linear memory.
type MemoryError struct {
	Op     string // "read" or "write"
	Offset uint32
	Length uint32
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("guest memory %s out of range: offset %d, length %d", e.Op, e.Offset, e.Length)
}

// ToErrorDetail implements DetailedError.
func (e *MemoryError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorTypeInternal, e.Error()).
		WithCode("memory_"+e.Op).
		WithDetail("offset", e.Offset).
		WithDetail("length", e.Length)
}

// WireFormatError represents a wire format encoding/decoding error.
type WireFormatError struct {
	Err       error
	Operation string
	Type      string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("wire format %s failed for %s: %v", e.Operation, e.Type, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	// Malformed wire input is the caller's fault.
	return entities.NewErrorDetail(entities.ErrorTypeValidation, e.Error()).WithCode("wire_format")
}
