package domain

import (
	"errors"
	"fmt"
)

// Error codes shared by every layer of the service.
const (
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeQueryFailed      = "QUERY_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
)

// Sentinel errors for use with errors.Is. Matching is done by code, so any
// AppError carrying the same code matches its sentinel.
var (
	ErrNotAuthenticated = &AppError{Code: CodeNotAuthenticated, Message: "authentication required"}
	ErrQueryFailed      = &AppError{Code: CodeQueryFailed, Message: "failed to query bookings"}
	ErrNotFound         = &AppError{Code: CodeNotFound, Message: "resource not found"}
	ErrValidation       = &AppError{Code: CodeValidation, Message: "validation failed"}
)

// AppError is a typed application error carrying a stable code, a
// client-safe message and an optional underlying cause.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error { return e.Err }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewNotAuthenticatedError is returned when an operation needs a current user and there is none.
func NewNotAuthenticatedError() *AppError {
	return &AppError{Code: CodeNotAuthenticated, Message: "authentication required"}
}

// NewQueryFailedError wraps a document store failure behind a generic message.
func NewQueryFailedError(cause error) *AppError {
	return &AppError{Code: CodeQueryFailed, Message: "failed to query bookings", Err: cause}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewValidationError reports invalid caller input.
func NewValidationError(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg}
}

// CodeOf returns the AppError code of err, or "" if err is not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
