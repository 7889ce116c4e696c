package lang

import (
	"errors"
	"log/slog"
)

// Result is the outcome of an evaluation: either a successful value or an
// error. Results are immutable.
type Result struct {
	value Value
	err   *Error
}

// Ok returns a successful Result holding v.
func Ok(v Value) Result { return Result{value: v} }

// Fail returns a failed Result. Errors that are not an *Error are reported
// with [KindInternal].
func Fail(err error) Result {
	if err == nil {
		err = ErrInternal.Detailf("failure without cause")
	}

	return Result{err: WrapError(err)}
}

// Success reports whether the evaluation succeeded.
func (r Result) Success() bool { return r.err == nil }

// Value returns the result value. It is unit for failed results.
func (r Result) Value() Value { return r.value }

// Err returns the failure, or nil on success.
func (r Result) Err() error {
	if r.err == nil {
		return nil
	}

	return r.err
}

// Kind returns the failure classification. It is meaningless on success.
func (r Result) Kind() Kind {
	if r.err == nil {
		return KindInternal
	}

	return r.err.Kind()
}

// Message returns the failure message, or "" on success.
func (r Result) Message() string {
	if r.err == nil {
		return ""
	}

	return r.err.Error()
}

// Is reports whether the failure matches target, as with [errors.Is].
func (r Result) Is(target error) bool {
	return r.err != nil && errors.Is(r.err, target)
}

// String returns "Success: <value>" or "Error: <message>".
func (r Result) String() string {
	if r.err != nil {
		return "Error: " + r.Message()
	}

	return "Success: " + r.value.Display()
}

// LogValue implements slog.LogValuer.
func (r Result) LogValue() slog.Value {
	if r.err != nil {
		return slog.GroupValue(
			slog.Bool("success", false),
			slog.Any("error", r.err),
		)
	}

	return slog.GroupValue(
		slog.Bool("success", true),
		slog.String("type", r.value.Type.String()),
		slog.String("value", r.value.String()),
	)
}
