package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// CapacityError is returned when an assignment would push an observer
// past its configured maximum of concurrently assigned students.
type CapacityError struct {
	ObserverID string
	Capacity   int
}

func NewCapacityError(observerID string, capacity int) error {
	return &CapacityError{ObserverID: observerID, Capacity: capacity}
}

func (err CapacityError) Error() string {
	return fmt.Sprintf("observer %s is at full capacity (%d)", err.ObserverID, err.Capacity)
}

func IsCapacity(err error) bool {
	_, ok := errors.Cause(err).(*CapacityError)
	return ok
}

// TransitionError is returned on an illegal state machine move.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func NewTransitionError(entity, from, to string) error {
	return &TransitionError{Entity: entity, From: from, To: to}
}

func (err TransitionError) Error() string {
	return fmt.Sprintf("%s: illegal transition %q -> %q", err.Entity, err.From, err.To)
}

func IsTransition(err error) bool {
	_, ok := errors.Cause(err).(*TransitionError)
	return ok
}

// TransientError wraps a backend/network failure that is safe to retry
// with backoff. The core itself never retries mutating commands; retry
// policy belongs to the caller.
type TransientError struct {
	Err error
}

func NewTransientError(err error) error {
	return &TransientError{Err: err}
}

func (err TransientError) Error() string {
	if err.Err == nil {
		return "transient backend error"
	}
	return err.Err.Error()
}

func (err TransientError) Unwrap() error { return err.Err }

func IsTransient(err error) bool {
	_, ok := errors.Cause(err).(*TransientError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
