// Package apperr defines the error taxonomy shared by all service
// operations. Services wrap these sentinels with context; the HTTP
// layer maps them to status codes.
package apperr

import "errors"

var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates a role or ownership mismatch.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition indicates the requested status is not
	// reachable from the record's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicatePending indicates a conflicting pending record
	// already exists for the same source and requester.
	ErrDuplicatePending = errors.New("conflicting pending record exists")

	// ErrConflict indicates a conditional update lost a race with a
	// concurrent writer. Callers may retry after re-reading.
	ErrConflict = errors.New("concurrent update conflict")
)
