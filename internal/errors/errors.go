package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeConflict    = "CONFLICT"
	ErrCodeUpstream    = "UPSTREAM_ERROR"
	ErrCodeForbidden   = "FORBIDDEN"
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConflictError is returned for actions that are not allowed in the
// current state, such as an illegal step transition.
func NewConflictError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// NewUpstreamError wraps a failed call to an external service. The message
// is shown to the user verbatim.
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUpstream,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// NewUnavailableError is returned when an external service refuses all
// requests, for example because its API is disabled for the configured key.
func NewUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// NewForbiddenError creates a new FORBIDDEN error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// As reports whether err is or wraps an *AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is forwards to the standard library so callers don't need both imports.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
