package errors

import (
	"errors"
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

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
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

// Predefined error types for common scenarios
var (
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrNotFound         = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrInternalServer   = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// statusForType maps application error categories to HTTP status codes
func statusForType(t ErrorType) (int, string) {
	switch t {
	case ErrTypeValidation:
		return http.StatusBadRequest, "VALIDATION_FAILED"
	case ErrTypeNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case ErrTypeFieldMissing:
		return http.StatusUnprocessableEntity, "FIELD_MISSING"
	case ErrTypeParsing:
		return http.StatusUnprocessableEntity, "PARSING_FAILED"
	case ErrTypeRange:
		return http.StatusUnprocessableEntity, "VALUE_OUT_OF_RANGE"
	default:
		return http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
	}
}

// FromError converts any error into an APIError suitable for rendering.
// AppError categories keep their type as the error code; everything else
// becomes a 500.
func FromError(err error) *APIError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status, code := statusForType(appErr.Type)
		return NewWithDetails(status, code, appErr.Message, appErr.Context)
	}
	return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", map[string]string{
		"field":   field,
		"message": message,
	})
}
