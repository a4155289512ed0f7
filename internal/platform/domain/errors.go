package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a closed set of machine-readable domain error codes.
type ErrorCode string

const (
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidState     ErrorCode = "INVALID_STATE"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// Scheduling-specific codes. Kept alongside the generic ones so the
	// HTTP layer can map every domain failure from a single switch.
	CodeInvalidTimeRange        ErrorCode = "INVALID_TIME_RANGE"
	CodeSlotUnavailable         ErrorCode = "SLOT_UNAVAILABLE"
	CodeBookingTerminal         ErrorCode = "BOOKING_TERMINAL"
	CodeNotReadyForConfirmation ErrorCode = "NOT_READY_FOR_CONFIRMATION"
	CodeUnknownParticipant      ErrorCode = "UNKNOWN_PARTICIPANT"
)

// DomainError is the typed error returned by domain and application code.
// All lifecycle failures are recoverable at the call site; none are fatal.
type DomainError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewNotFoundError creates a not-found error for an entity and identifier.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError creates a conflict error (e.g. optimistic lock failure).
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// NewInvalidStateError creates an error for an illegal state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{Code: CodeInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: message}
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(message string) *DomainError {
	return &DomainError{Code: CodeTimeout, Message: message}
}

// NewStoreUnavailableError wraps a store-level failure as retryable.
func NewStoreUnavailableError(message string) *DomainError {
	return &DomainError{Code: CodeStoreUnavailable, Message: message}
}

// NewError creates a DomainError with an explicit code.
func NewError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns an empty code if err is not a DomainError.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
