package controller

import (
	"errors"
	"fmt"
)

// ValidationError is raised when the selected input is not a usable image.
type ValidationError struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Message   string `json:"message"`
	Cause     error  `json:"-"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg = fmt.Sprintf("%s: %s", e.Name, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// MissingInputError is raised when analysis is requested with no selection.
type MissingInputError struct{}

// Error implements the error interface
func (e *MissingInputError) Error() string {
	return "Please select an image first!"
}

// BusyError is raised when analysis is requested while a remote call for
// the current selection is still in flight.
type BusyError struct {
	State State `json:"state"`
}

// Error implements the error interface
func (e *BusyError) Error() string {
	switch e.State {
	case StatePreviewing:
		return "Preview still in progress, wait for it before analyzing"
	case StateAnalyzing:
		return "Analysis already in progress"
	default:
		return fmt.Sprintf("controller busy (%s)", e.State)
	}
}

// NewValidationError creates a validation error
func NewValidationError(name, mediaType, message string) *ValidationError {
	return &ValidationError{
		Name:      name,
		MediaType: mediaType,
		Message:   message,
	}
}

// NewValidationErrorWithCause creates a validation error with an underlying cause
func NewValidationErrorWithCause(name, message string, cause error) *ValidationError {
	return &ValidationError{
		Name:    name,
		Message: message,
		Cause:   cause,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsMissingInputError checks if an error is a missing input error
func IsMissingInputError(err error) bool {
	var me *MissingInputError
	return errors.As(err, &me)
}

// IsBusyError checks if an error is a busy error
func IsBusyError(err error) bool {
	var be *BusyError
	return errors.As(err, &be)
}
