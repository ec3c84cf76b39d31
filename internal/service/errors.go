package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes a remote call failure
type ErrorKind string

const (
	// ErrKindServer indicates the server replied with an error payload or status
	ErrKindServer ErrorKind = "server"

	// ErrKindTransport indicates the request never got a reply
	ErrKindTransport ErrorKind = "transport"

	// ErrKindParse indicates the reply could not be understood
	ErrKindParse ErrorKind = "parse"

	// ErrKindInput indicates the local file could not be read for upload
	ErrKindInput ErrorKind = "input"

	// ErrKindConfiguration indicates an invalid client configuration
	ErrKindConfiguration ErrorKind = "configuration"
)

// RemoteError represents a failed Preview or Analyze call
type RemoteError struct {
	// Kind categorizes the error
	Kind ErrorKind `json:"kind"`

	// Op is the remote operation, "preview" or "analyze"
	Op string `json:"op"`

	// Message provides human-readable error description
	Message string `json:"message"`

	// StatusCode for HTTP-related errors
	StatusCode int `json:"status_code,omitempty"`

	// RequestID echoes the X-Request-ID sent with the call
	RequestID string `json:"request_id,omitempty"`

	// Traceback is the server-side trace when the server sends one
	Traceback string `json:"traceback,omitempty"`

	// Underlying error that caused this error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" failed: ")
	}
	b.WriteString(e.Message)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error kind
func (e *RemoteError) Is(target error) bool {
	if re, ok := target.(*RemoteError); ok {
		return e.Kind == re.Kind
	}
	return false
}

// NewRemoteError creates a new remote error
func NewRemoteError(kind ErrorKind, op, message string) *RemoteError {
	return &RemoteError{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// NewRemoteErrorWithCause creates a remote error with an underlying cause
func NewRemoteErrorWithCause(kind ErrorKind, op, message string, cause error) *RemoteError {
	return &RemoteError{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// IsRemoteError checks if an error is a remote error and returns it
func IsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsKind checks if an error is a remote error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	re, ok := IsRemoteError(err)
	return ok && re.Kind == kind
}
