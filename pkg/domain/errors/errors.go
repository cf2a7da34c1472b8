// pkg/domain/errors/errors.go

// Package errors defines the coded errors returned by the obfuscation engine.
// Errors raised by a sink or source are never wrapped in these types; they
// are returned to the caller unchanged.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure.
type Code string

const (
	// CodeOutOfRange indicates a start/end pair that is negative, inverted or
	// beyond the length of the addressed text.
	CodeOutOfRange Code = "OUT_OF_RANGE"

	// CodeInvalidArgument indicates a negative count, a malformed chain or a
	// missing collaborator.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeInvalidState indicates an internally inconsistent configuration or
	// a pluggable function that broke its contract.
	CodeInvalidState Code = "INVALID_STATE"

	// CodeStreamClosed indicates a write or flush on a closed writer.
	CodeStreamClosed Code = "STREAM_CLOSED"
)

// Error is an error carrying a Code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, &Error{Code: CodeOutOfRange}) matches any out of range error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == "" && t.Cause == nil
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with the given code and message that wraps cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain.
// The second result is false if there is none.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// IsCode reports whether err has an *Error with the given code in its chain.
func IsCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// Error constructors.

// OutOfRange creates an error for an invalid start/end pair.
func OutOfRange(start, end, length int) *Error {
	return Newf(CodeOutOfRange, "start %d, end %d, length %d", start, end, length)
}

// InvalidArgument creates an error for an invalid argument.
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// InvalidState creates an error for an inconsistent state.
// The cause may be nil.
func InvalidState(message string, cause error) *Error {
	return Wrap(CodeInvalidState, message, cause)
}

// StreamClosed creates an error for an operation on a closed writer.
func StreamClosed() *Error {
	return New(CodeStreamClosed, "writer is closed")
}

// Error checking helpers.

// IsOutOfRange checks if the error is an out of range error.
func IsOutOfRange(err error) bool {
	return IsCode(err, CodeOutOfRange)
}

// IsInvalidArgument checks if the error is an invalid argument error.
func IsInvalidArgument(err error) bool {
	return IsCode(err, CodeInvalidArgument)
}

// IsInvalidState checks if the error is an invalid state error.
func IsInvalidState(err error) bool {
	return IsCode(err, CodeInvalidState)
}

// IsStreamClosed checks if the error is a stream closed error.
func IsStreamClosed(err error) bool {
	return IsCode(err, CodeStreamClosed)
}
