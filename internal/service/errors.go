package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/straye-as/cbam-api/internal/cbam"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when the request conflicts with the current data
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")
)

// Entry lifecycle errors
var (
	ErrEntryNotFound      = fmt.Errorf("entry %w", ErrNotFound)
	ErrPrecursorNotFound  = fmt.Errorf("precursor %w", ErrNotFound)
	ErrLockNotFound       = fmt.Errorf("lock %w", ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("submission %w", ErrNotFound)

	// ErrEntrySubmitted is returned for any change to a submitted entry
	ErrEntrySubmitted = fmt.Errorf("entry has been submitted and is read-only: %w", ErrConflict)

	// ErrNotAllowedInState is returned when the derived state forbids an action
	ErrNotAllowedInState = errors.New("action not allowed in current state")

	// ErrSubmissionBlocked is returned when a submission gate fails at submit time
	ErrSubmissionBlocked = errors.New("submission blocked")

	// ErrLockClosed is returned when resolving a lock that is no longer active
	ErrLockClosed = fmt.Errorf("lock is already closed: %w", ErrConflict)

	// ErrArchiveUnavailable is returned when no archive store is configured
	ErrArchiveUnavailable = errors.New("submission archive is not configured")
)

// StateError reports an action the entry's current state does not allow
type StateError struct {
	State  cbam.State
	Action string
	// Fields lists the rejected fields of an update, if any
	Fields []string
}

func (e *StateError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("cannot %s %s in state %s", e.Action, strings.Join(e.Fields, ", "), e.State)
	}
	return fmt.Sprintf("cannot %s in state %s", e.Action, e.State)
}

func (e *StateError) Unwrap() error {
	return ErrNotAllowedInState
}

// GateError carries the gate evaluation that blocked a submission
type GateError struct {
	Evaluation cbam.GateEvaluation
}

func (e *GateError) Error() string {
	return fmt.Sprintf("submission blocked: %s", strings.Join(e.Evaluation.BlockedReasons, "; "))
}

func (e *GateError) Unwrap() error {
	return ErrSubmissionBlocked
}
