package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Is reports whether target is an APIError with the same status and code, so
// errors built by the helpers below match the package sentinels.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.ErrorCode == t.ErrorCode
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents a single invalid field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrInvalidDateRange = New(http.StatusBadRequest, "INVALID_DATE", "Date must use the YYYY-MM-DD format")

	// 404 Not Found
	ErrNotFound     = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrViewNotFound = New(http.StatusNotFound, "VIEW_NOT_FOUND", "Dashboard view not found")

	// 405 Method Not Allowed
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrExportFailed   = New(http.StatusInternalServerError, "EXPORT_FAILED", "Export failed")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(ErrInvalidRequest.StatusCode, ErrInvalidRequest.ErrorCode, ErrInvalidRequest.Message, err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(ErrValidationFailed.StatusCode, ErrValidationFailed.ErrorCode, ErrValidationFailed.Message, ValidationError{
		Field:   field,
		Message: message,
	})
}

// InvalidDateError reports an unparseable date query parameter
func InvalidDateError(field, value string) *APIError {
	return NewWithDetails(ErrInvalidDateRange.StatusCode, ErrInvalidDateRange.ErrorCode,
		fmt.Sprintf("%s must use the YYYY-MM-DD format", field),
		ValidationError{Field: field, Message: fmt.Sprintf("cannot parse %q", value)})
}

// UnknownViewError reports a view name outside the fixed set
func UnknownViewError(view string) *APIError {
	return NewWithDetails(ErrViewNotFound.StatusCode, ErrViewNotFound.ErrorCode, fmt.Sprintf("view %q not found", view), view)
}

// MethodNotAllowedError reports a method the route does not serve
func MethodNotAllowedError(method, path string) *APIError {
	return New(ErrMethodNotAllowed.StatusCode, ErrMethodNotAllowed.ErrorCode,
		fmt.Sprintf("%s is not allowed on %s", method, path))
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(ErrNotFound.StatusCode, ErrNotFound.ErrorCode, fmt.Sprintf("%s not found", resource), resource)
}

// ExportError wraps a failure while writing an export
func ExportError(format string, err error) *APIError {
	return NewWithDetails(ErrExportFailed.StatusCode, ErrExportFailed.ErrorCode, fmt.Sprintf("%s export failed", format), err.Error())
}
