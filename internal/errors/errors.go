package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Tacit error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNoSelection    ErrorCode = "NO_SELECTION"    // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrSessionOpen    ErrorCode = "SESSION_OPEN"    // 409
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// TacitError represents a structured error with code, status, and details.
type TacitError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TacitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TacitError {
	return &TacitError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNoSelection creates a 400 error for selection-based actions invoked
// without an active selection. Callers surface this as a non-blocking
// informational message, never as a failure dialog.
func NewNoSelection() *TacitError {
	return &TacitError{
		Code:    ErrNoSelection,
		Status:  400,
		Message: "no selection is active; select text before adding it to context",
	}
}

// NewNotFound creates a 404 error for a missing record or path.
func NewNotFound(identifier string) *TacitError {
	return &TacitError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewSessionOpen creates a 409 error for session lifecycle misuse, e.g.
// opening a session while another file's session is still open.
func NewSessionOpen(openPath string) *TacitError {
	return &TacitError{
		Code:    ErrSessionOpen,
		Status:  409,
		Message: fmt.Sprintf("a session is already open for %q; close it first", openPath),
		Details: map[string]any{"open_path": openPath},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *TacitError {
	return &TacitError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message is generic; the original error is kept in Details for logging
// so that file paths and SQL fragments never leak to clients.
func NewInternal(err error) *TacitError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &TacitError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is (or wraps) a TacitError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TacitError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}
