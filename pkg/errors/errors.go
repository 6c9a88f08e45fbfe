package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios. The four recoverable families are
// validation, conflict, not-found and state; persistence failures surface as
// INTERNAL_ERROR and abort the single operation.
var (
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrConflict   = New("CONFLICT", http.StatusConflict, "conflict")
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrState      = New("STATE_ERROR", http.StatusConflict, "operation not allowed in current state")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	ErrInvalidDay       = New("INVALID_DAY", http.StatusBadRequest, "weekday is missing or not schedulable")
	ErrInvalidRange     = New("INVALID_RANGE", http.StatusBadRequest, "start time must come before end time")
	ErrMissingReference = New("MISSING_REFERENCE", http.StatusBadRequest, "room and subject references are required")
	ErrOutOfRange       = New("OUT_OF_RANGE", http.StatusBadRequest, "period lies outside the allowed time window")

	ErrDuplicateID              = New("DUPLICATE_ID", http.StatusConflict, "identifier already in use")
	ErrDuplicateName            = New("DUPLICATE_NAME", http.StatusConflict, "name already in use")
	ErrPeriodOverlap            = New("PERIOD_OVERLAP", http.StatusConflict, "period overlaps an existing period in the same room")
	ErrActiveSubstitutionExists = New("ACTIVE_SUBSTITUTION_EXISTS", http.StatusConflict, "teacher already has an active substitution")

	ErrRoomBusy             = New("ROOM_BUSY", http.StatusConflict, "room is not free")
	ErrRoleError            = New("ROLE_ERROR", http.StatusConflict, "account role does not permit this transition")
	ErrLastAdmin            = New("LAST_ADMIN", http.StatusConflict, "cannot remove the last administrator")
	ErrNoSubstituteAssigned = New("NO_SUBSTITUTE_ASSIGNED", http.StatusConflict, "no substitution record exists for this account")

	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code == target.Code
	}
	return false
}
