package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Kind classifies a formula failure.
type Kind int

const (
	KindInternal           Kind = iota // Internal
	KindLex                            // LexError
	KindParse                          // ParseError
	KindUnknownVariable                // UnknownVariable
	KindUnknownFunction                // UnknownFunction
	KindTypeMismatch                   // TypeMismatch
	KindDivisionByZero                 // DivisionByZero
	KindServiceUnavailable             // ServiceUnavailable
	KindUnknownCurrency                // UnknownCurrency
	KindArityMismatch                  // ArityMismatch
	KindIndexOutOfRange                // IndexOutOfRange
)

// IsCompileTime reports whether failures of this kind are raised by
// [Compile] rather than during evaluation.
func (k Kind) IsCompileTime() bool { return k == KindLex || k == KindParse }

// Predefined errors (sentinel values).
var (
	ErrLex                = NewError(KindLex, "lex error")
	ErrParse              = NewError(KindParse, "parse error")
	ErrUnknownVariable    = NewError(KindUnknownVariable, "unknown variable")
	ErrUnknownFunction    = NewError(KindUnknownFunction, "unknown function")
	ErrTypeMismatch       = NewError(KindTypeMismatch, "type mismatch")
	ErrDivisionByZero     = NewError(KindDivisionByZero, "division by zero")
	ErrServiceUnavailable = NewError(KindServiceUnavailable, "service unavailable")
	ErrUnknownCurrency    = NewError(KindUnknownCurrency, "unknown currency")
	ErrArityMismatch      = NewError(KindArityMismatch, "wrong number of arguments")
	ErrIndexOutOfRange    = NewError(KindIndexOutOfRange, "index out of range")
	ErrIntegerOverflow    = NewError(KindTypeMismatch, "integer overflow")
	ErrInternal           = NewError(KindInternal, "internal error")
	ErrReadInput          = NewError(KindInternal, "failed to read input")
	ErrRegistryFrozen     = NewError(KindInternal, "registry is frozen")
	ErrDuplicateFunction  = NewError(KindInternal, "function already registered")
)

// Error represents a formula failure with optional structured logging
// attributes. It implements both error and slog.LogValuer interfaces.
//
// Errors are immutable; every refinement method returns a new Error that
// keeps the kind and message of its receiver.
type Error struct {
	kind   Kind
	msg    string
	detail string
	err    error // Wrapped error (for errors.Unwrap)
	pos    Position
	source string
	attrs  []slog.Attr
}

// NewError creates a new Error of the given kind.
func NewError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// WrapError converts any error into an *Error. Errors that already are (or
// wrap) an *Error are returned as-is; anything else becomes an
// [KindInternal] error wrapping err.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}

	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{kind: KindInternal, err: err}
}

// Kind returns the failure classification.
func (e *Error) Kind() Kind { return e.kind }

// Position returns the source position of a compile-time error. The zero
// Position is returned for errors without one.
func (e *Error) Position() Position { return e.pos }

// Detail returns the error-specific detail, such as the unknown name.
func (e *Error) Detail() string { return e.detail }

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message from whichever fields are set:
	//
	//   "<msg> at line L, column C: <detail>: <err>"
	var sb strings.Builder

	sb.WriteString(e.msg)

	if e.pos.IsValid() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString("at line ")
		sb.WriteString(strconv.Itoa(e.pos.Line))
		sb.WriteString(", column ")
		sb.WriteString(strconv.Itoa(e.pos.Column))
	}

	for _, part := range []string{e.detail, e.cause()} {
		if part == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(part)
	}

	return sb.String()
}

func (e *Error) cause() string {
	if e.err == nil {
		return ""
	}

	return e.err.Error()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error of the same kind and message, so
// that refined copies of a sentinel still match it with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.kind == e.kind && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)

	attrs = append(attrs, slog.String("kind", e.kind.String()))

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.detail != "" {
		attrs = append(attrs, slog.String("detail", e.detail))
	}

	if e.pos.IsValid() {
		attrs = append(attrs, slog.String("position", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func (e *Error) clone() *Error {
	c := *e

	return &c
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// Detailf creates a new Error with a formatted detail message appended to the
// base message.
func (e *Error) Detailf(format string, args ...any) *Error {
	c := e.clone()
	c.detail = fmt.Sprintf(format, args...)

	return c
}

// At creates a new Error annotated with a source position and the source text
// it refers to. The source is used by [Error.Snippet].
func (e *Error) At(pos Position, source string) *Error {
	c := e.clone()
	c.pos = pos
	c.source = source

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// Snippet renders the source line containing the error position with a caret
// under the offending column. It returns "" when the error carries no
// position or source.
func (e *Error) Snippet() string {
	if !e.pos.IsValid() || e.source == "" {
		return ""
	}

	lines := strings.Split(e.source, "\n")
	if e.pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.pos.Line))
	src.WriteString(" | ")
	src.WriteString(lines[e.pos.Line-1])
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	lineNumWidth := len(strconv.Itoa(e.pos.Line))
	padding := strings.Repeat(" ", lineNumWidth+5)

	if e.pos.Column > 0 {
		padding += strings.Repeat(" ", e.pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// KindOf returns the Kind of err, or [KindInternal] if err is not an *Error.
func KindOf(err error) Kind {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee.kind
	}

	return KindInternal
}
