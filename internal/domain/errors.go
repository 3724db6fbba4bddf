package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the workflow.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidTransition is returned when a command is issued while its
	// preconditions are unmet. State is left unchanged.
	ErrInvalidTransition = errors.New("pencen: invalid transition")

	// ErrInvalidInput is returned when a command argument is outside its
	// allowed set. State is left unchanged.
	ErrInvalidInput = errors.New("pencen: invalid input")

	// ErrAlreadyRunning is returned when Start() is called on a running terminal.
	ErrAlreadyRunning = errors.New("pencen: already running")

	// ErrNotRunning is returned when a command or Stop() reaches a terminal
	// that is not running.
	ErrNotRunning = errors.New("pencen: not running")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("pencen: invalid configuration")
)

// RejectionError describes a command that was refused.
// It unwraps to ErrInvalidTransition or ErrInvalidInput.
type RejectionError struct {
	Command string
	Reason  string
	Err     error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Reason, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// RejectTransition builds a RejectionError wrapping ErrInvalidTransition.
func RejectTransition(command, reason string) error {
	return &RejectionError{Command: command, Reason: reason, Err: ErrInvalidTransition}
}

// RejectInput builds a RejectionError wrapping ErrInvalidInput.
func RejectInput(command, reason string) error {
	return &RejectionError{Command: command, Reason: reason, Err: ErrInvalidInput}
}
