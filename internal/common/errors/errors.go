// Package errors provides standardized error handling for the loan backend.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeInvalidSessionID    ErrorCode = "INVALID_SESSION_ID"
	ErrCodeInvalidUploadType   ErrorCode = "INVALID_UPLOAD_TYPE"
	ErrCodeUploadTooSmall      ErrorCode = "UPLOAD_TOO_SMALL"
	ErrCodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrCodeDatabaseUnavailable ErrorCode = "DATABASE_UNAVAILABLE"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code to the status the API boundary reports.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidSessionID, ErrCodeInvalidUploadType, ErrCodeUploadTooSmall, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeDatabaseUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewSessionNotFoundError creates a non-retryable unknown-session error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidSessionIDError creates a non-retryable malformed-id error.
func NewInvalidSessionIDError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSessionID,
		Message:   "Invalid session id",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidUploadTypeError creates a non-retryable upload rejection for a
// file with an unaccepted content type. The first offending file is reported.
func NewInvalidUploadTypeError(filename string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidUploadType,
		Message:   fmt.Sprintf("Invalid file type: %s", filename),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadTooSmallError creates a non-retryable upload rejection for a file
// below the minimum readable size.
func NewUploadTooSmallError(filename string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadTooSmall,
		Message:   fmt.Sprintf("File too small/unclear: %s", filename),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable malformed-payload error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseUnavailableError creates a retryable store-connectivity error.
func NewDatabaseUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseUnavailable,
		Message:   "Database not configured or unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures err is a StandardError, wrapping unknown errors as
// internal failures.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}
