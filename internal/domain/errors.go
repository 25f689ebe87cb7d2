package domain

import (
	"errors"
	"strings"
)

var (
	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")

	// Ledger errors
	ErrLedgerFull          = errors.New("ledger already has the maximum number of members")
	ErrInviteCodeExhausted = errors.New("failed to generate a unique invite code")

	// Registration errors
	ErrAlreadyRegistered = errors.New("user is already registered")
)

// ValidationError describes malformed input. It matches ErrInvalidInput with errors.Is
// but prints only its own messages so they can be shown to the caller as-is.
type ValidationError struct {
	Messages []string
}

// NewValidationError creates a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// validationErrors accumulates field messages and yields nil when empty.
type validationErrors []string

func (v *validationErrors) add(msg string) {
	*v = append(*v, msg)
}

func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return NewValidationError(v...)
}
