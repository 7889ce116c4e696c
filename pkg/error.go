package pkg

// Sentinel errors for command startup and shutdown. These errors can be
// tested using errors.Is for reliable error checking.

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error represents a chain of errors.
type Error []error

// ErrCreateDir is returned when a runtime directory cannot be created.
//
// This error should be wrapped with the underlying I/O error.
var ErrCreateDir = MakeErrorf("create runtime directory")

// ErrInvalidConstant is returned when an injected constant is not a number
// or its name is not an identifier.
var ErrInvalidConstant = MakeErrorf("invalid constant")

// ErrInvalidAmount is returned when a conversion amount is not a number.
var ErrInvalidAmount = MakeErrorf("invalid amount")

// ErrInvalidBinding is returned when a variable binding is not of the form
// name=value.
var ErrInvalidBinding = MakeErrorf("invalid binding")

// ErrRelease is returned when a resource held for the duration of a command
// cannot be released.
//
// This error should be wrapped with the underlying error.
var ErrRelease = MakeErrorf("release resource")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of all errors
// in the error chain, separated by ": ", from innermost to outermost.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
func (e Error) Wrap(err ...error) Error {
	return append(slices.Clip(e), err...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(slices.Clip(e), fmt.Errorf(format, args...))
}

// Is reports whether target is a sentinel Error whose root error occurs in
// the receiver's chain, so that wrapped copies of a sentinel match it.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 {
		return false
	}

	return slices.ContainsFunc(e, func(err error) bool {
		return errors.Is(err, t[0])
	})
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
