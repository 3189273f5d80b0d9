package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrStoreUnavailable
	ErrCorruptDocument
	ErrVersionConflict
	ErrDeliveryFailure
	ErrInternal
)

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

// StoreUnavailable marks a backend that could not be reached. The mutation is
// aborted and nothing was committed.
func StoreUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrStoreUnavailable,
		Message: "event store unavailable",
		Err:     err,
	}
}

// CorruptDocument marks a persisted payload that did not parse. Writes must
// refuse to proceed so the existing document is never clobbered.
func CorruptDocument(err error) *AppError {
	return &AppError{
		Code:    ErrCorruptDocument,
		Message: "persisted event document is corrupt",
		Err:     err,
	}
}

// VersionConflict marks a commit rejected because the backend's version token
// went stale. Retryable: reload, reapply, recommit.
func VersionConflict(err error) *AppError {
	return &AppError{
		Code:    ErrVersionConflict,
		Message: "event store version conflict",
		Err:     err,
	}
}

func DeliveryFailure(err error) *AppError {
	return &AppError{
		Code:    ErrDeliveryFailure,
		Message: "notification delivery failed",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
