// Package ocrerr defines the closed error taxonomy shared across docr.
// Every failure crossing a package boundary is one of these kinds so that
// callers can branch on kind without knowing the failing subsystem.
package ocrerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindInvalidInput means the input is neither a URL, an existing file,
	// nor an existing directory. Terminal for the call.
	KindInvalidInput Kind = "invalid_input"

	// KindUnsupportedFileType means the file extension is not in the
	// supported set. Terminal for the item, recoverable at batch granularity.
	KindUnsupportedFileType Kind = "unsupported_file_type"

	// KindFileAccess covers not-found, permission, and read/write failures.
	KindFileAccess Kind = "file_access"

	// KindRemoteService means the remote OCR call failed.
	KindRemoteService Kind = "remote_service"

	// KindOther wraps any unexpected condition so all failure paths present
	// one error family to callers.
	KindOther Kind = "other"
)

// Error is the single error type used across docr packages.
type Error struct {
	Kind    Kind
	Message string

	// Path is the file or URL involved, when applicable.
	Path string

	// Status is the remote HTTP status, when applicable.
	Status int

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path: %s)", msg, e.Path)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status: %d)", msg, e.Status)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithPath attaches a file path or URL to the error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithStatus attaches a remote HTTP status to the error.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// Wrap converts err into an *Error of the given kind, preserving the cause.
// If err is already an *Error it is returned unchanged so the original kind
// survives rewrapping at outer layers.
func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return nil
	}
	var oe *Error
	if errors.As(err, &oe) {
		return oe
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindOther if err is not an *Error.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindOther
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Kind == kind
}
