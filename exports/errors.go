package exports

import (
	"encoding/json"
	stdErrors "errors"

	"github.com/reglet-dev/reglet-numerics/domain/entities"
	"github.com/reglet-dev/reglet-numerics/domain/errors"
)

// ErrorResponse is the JSON error body returned to hosts that can carry one.
type ErrorResponse struct {
	// Error is a machine-readable error type identifier (e.g., "VALIDATION_ERROR").
	Error string `json:"error"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Code is a numeric error code in HTTP style (400, 404, 422, 500).
	Code int `json:"code"`

	// Detail is the structured form of the underlying error, when known.
	Detail *entities.ErrorDetail `json:"detail,omitempty"`
}

// ToJSON serializes the ErrorResponse to JSON bytes.
// Returns nil if serialization fails (which should never happen for this simple type).
func (e ErrorResponse) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}

// NewValidationError creates an error response for undecodable arguments.
func NewValidationError(message string) ErrorResponse {
	return ErrorResponse{Error: "VALIDATION_ERROR", Message: message, Code: 400}
}

// NewNotFoundError creates an error response for unknown export names.
func NewNotFoundError(name string) ErrorResponse {
	return ErrorResponse{Error: "NOT_FOUND", Message: "unknown export: " + name, Code: 404}
}

// NewDomainError creates an error response for kernel inputs outside their domain.
func NewDomainError(message string) ErrorResponse {
	return ErrorResponse{Error: "DOMAIN_ERROR", Message: message, Code: 422}
}

// NewConvergenceError creates an error response for capped searches.
func NewConvergenceError(message string) ErrorResponse {
	return ErrorResponse{Error: "NO_CONVERGENCE", Message: message, Code: 422}
}

// NewInternalError creates an error response for unexpected failures.
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{Error: "INTERNAL_ERROR", Message: message, Code: 500}
}

// NewPanicError creates an error response for recovered panics.
func NewPanicError(panicValue any) ErrorResponse {
	var msg string
	if err, ok := panicValue.(error); ok {
		msg = err.Error()
	} else if s, ok := panicValue.(string); ok {
		msg = s
	} else {
		msg = "panic recovered"
	}
	return ErrorResponse{Error: "INTERNAL_ERROR", Message: "panic: " + msg, Code: 500}
}

// ResponseFromError maps a Go error onto an ErrorResponse through its
// structured form, and attaches that form as Detail.
func ResponseFromError(err error) ErrorResponse {
	detail := errors.ToErrorDetail(err)
	if detail == nil {
		detail = entities.NewErrorDetail(entities.ErrorTypeInternal, "no error")
	}

	var resp ErrorResponse
	switch detail.Type {
	case entities.ErrorTypeNotFound:
		resp = NewNotFoundError(detail.Code)
	case entities.ErrorTypeValidation:
		resp = NewValidationError(detail.Message)
	case entities.ErrorTypeDomain:
		resp = NewDomainError(detail.Message)
	case entities.ErrorTypeConvergence:
		resp = NewConvergenceError(detail.Message)
	case entities.ErrorTypePanic:
		var panicErr *errors.PanicError
		if stdErrors.As(err, &panicErr) {
			resp = NewPanicError(panicErr.Value)
		} else {
			resp = NewInternalError(detail.Message)
		}
	default:
		resp = NewInternalError(detail.Message)
	}
	resp.Detail = detail
	return resp
}
