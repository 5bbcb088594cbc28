package model

import "fmt"

// StoreError wraps a failure from the backing store. It is always transient
// from the engine's point of view: the caller must not retry silently
// because ticket state may have changed in the meantime.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err as a StoreError attributed to op.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// InvalidInputError reports a malformed Ticket or SimilarTicket entry, e.g.
// a missing required field or a similarity score outside [0, 1].
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Message
}

// NewInvalidInput builds an InvalidInputError.
func NewInvalidInput(message string) error {
	return &InvalidInputError{Message: message}
}

// InvariantViolationError reports a fatal internal inconsistency: a weight
// row not summing to 1.0, an unknown priority, or a snapshot cross-reference
// failure. It is always surfaced to the caller, never recovered from.
type InvariantViolationError struct {
	Message string
}

func (e *InvariantViolationError) Error() string {
	return "invariant violation: " + e.Message
}

// NewInvariantViolation builds an InvariantViolationError.
func NewInvariantViolation(message string) error {
	return &InvariantViolationError{Message: message}
}
