// Package domain holds error types shared across the processor,
// transport, and store packages — the sentinel/wrapped-error convention
// used throughout this repository, adapted from the teacher's
// domain/errors.go (DomainError struct, errors.Is-based classifiers).
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrChannelOutOfRange         = errors.New("channel number out of range")
	ErrFilterCoefficientSingular = errors.New("filter coefficients are undefined for the given parameters")
	ErrDeviceRecoveryFailed      = errors.New("audio device recovery failed")
	ErrUnknownCommand            = errors.New("unknown command_type")
	ErrMissingCommand            = errors.New("missing command_type")
	ErrParameterNotFound         = errors.New("parameter not found")
	ErrInvalidCommandPayload     = errors.New("invalid command payload")
)

// CommandError is the structured error surfaced to the control
// transport (spec §4.8's error broadcast shapes): a machine-readable
// ErrorType plus a human-readable message.
type CommandError struct {
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message,omitempty"`
	Err          error  `json:"-"`
}

func (e *CommandError) Error() string {
	if e.ErrorMessage != "" {
		return fmt.Sprintf("%s: %s", e.ErrorType, e.ErrorMessage)
	}
	return e.ErrorType
}

func (e *CommandError) Unwrap() error { return e.Err }

func NewCommandError(errorType, message string, err error) *CommandError {
	return &CommandError{ErrorType: errorType, ErrorMessage: message, Err: err}
}

func IsDeviceError(err error) bool {
	return errors.Is(err, ErrDeviceRecoveryFailed)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrChannelOutOfRange) || errors.Is(err, ErrFilterCoefficientSingular) ||
		errors.Is(err, ErrInvalidCommandPayload)
}
