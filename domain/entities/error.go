package entities

import "fmt"

// Error categories carried in ErrorDetail.Type.
const (
	ErrorTypeDomain      = "domain"
	ErrorTypeConvergence = "convergence"
	ErrorTypeValidation  = "validation"
	ErrorTypeNotFound    = "not_found"
	ErrorTypePanic       = "panic"
	ErrorTypeConfig      = "config"
	ErrorTypeInternal    = "internal"
)

// ErrorDetail is the structured form of a failed call. Hosts that can carry
// an error body attach it to their response.
type ErrorDetail struct {
	// Details holds category-specific fields, e.g. the offending parameter.
	Details map[string]any `json:"details,omitempty"`

	// Type is one of the ErrorType constants.
	Type string `json:"type"`

	// Code narrows the category: the export name, a kind, a config field.
	Code string `json:"code,omitempty"`

	Message string `json:"message"`

	// Stack is the goroutine stack of a recovered panic. Never serialized.
	Stack []byte `json:"-"`
}

// NewErrorDetail creates an ErrorDetail of the given category.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{Type: errorType, Message: message}
}

// WithCode sets Code and returns the same ErrorDetail.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}

// WithDetail adds one entry to Details and returns the same ErrorDetail.
func (e *ErrorDetail) WithDetail(key string, value any) *ErrorDetail {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// NotFound reports whether the detail describes a call to an unknown export.
func (e *ErrorDetail) NotFound() bool {
	return e != nil && e.Type == ErrorTypeNotFound
}

// Error implements the error interface as "type [code]: message".
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Type, e.Code, e.Message)
	}
	return e.Type + ": " + e.Message
}
