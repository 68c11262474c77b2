package cast

import (
	"errors"
	"fmt"
	"strings"

	"recordcast/typedesc"
)

// Error classes. Every cast failure wraps exactly one of them.
var (
	// ErrType marks failures caused by the target shape or by a value that
	// cannot be constructed into the target type.
	ErrType = errors.New("type error")
	// ErrValue marks failures caused by a value lacking the structure the
	// target shape requires.
	ErrValue = errors.New("value error")
)

var (
	ErrNilTarget         = fmt.Errorf("%w: target type is nil", ErrType)
	ErrPlaceholderTarget = fmt.Errorf("%w: casting to a type variable is forbidden", ErrType)
	ErrGenericTarget     = fmt.Errorf("%w: casting to a generic type without a concrete shape is forbidden", ErrType)
	ErrRecordConstruct   = fmt.Errorf("%w: cannot construct record", ErrType)
	ErrConvert           = fmt.Errorf("%w: cannot convert value", ErrType)

	ErrNotIterable = fmt.Errorf("%w: value is not iterable", ErrValue)
	ErrNotMapping  = fmt.Errorf("%w: value does not expose key/value pairs", ErrValue)
	ErrUnhashable  = fmt.Errorf("%w: value cannot be used as a set element or dict key", ErrValue)
)

// Error describes a failed cast of Value to Target.
type Error struct {
	Value  any
	Target typedesc.Type
	// Path locates the failing element inside the outermost value,
	// e.g. "[2]" or "[port]". Empty for the outermost value itself.
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("cast ")
	b.WriteString(describe(e.Value))
	b.WriteString(" to ")

	if e.Target == nil {
		b.WriteString("<nil>")
	} else {
		b.WriteString(e.Target.String())
	}

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(value any, target typedesc.Type, err error) *Error {
	return &Error{Value: value, Target: target, Err: err}
}

// nest prefixes the path of a nested cast error with the element locator.
func nest(err error, locator string) error {
	if ce, ok := err.(*Error); ok {
		ce.Path = locator + ce.Path
		return ce
	}

	return fmt.Errorf("%s: %w", locator, err)
}

const maxDescribeLen = 64

func describe(v any) string {
	if v == nil {
		return "<nil>"
	}

	s := fmt.Sprintf("%v", v)
	if len(s) > maxDescribeLen {
		s = s[:maxDescribeLen] + "..."
	}

	return fmt.Sprintf("%T(%s)", v, s)
}
