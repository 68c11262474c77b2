package record

import (
	"errors"
	"fmt"

	"recordcast/typedesc"
)

// Schema-definition errors, reported by Finalize.
var (
	ErrEmptyName           = errors.New("name is empty")
	ErrNilType             = errors.New("field type is nil")
	ErrDuplicateField      = errors.New("field is declared twice")
	ErrUnknownDependency   = errors.New("field depends on an undeclared field")
	ErrMissingFieldHandler = errors.New("field declares dependencies but has no field handler")
	ErrDependencyCycle     = errors.New("cyclic field dependency")
)

// Construction errors. Argument binding errors wrap typedesc.ErrArity.
var (
	ErrTooManyArguments  = fmt.Errorf("%w: too many positional arguments", typedesc.ErrArity)
	ErrDuplicateArgument = fmt.Errorf("%w: field given both positionally and by name", typedesc.ErrArity)
	ErrUnknownField      = fmt.Errorf("%w: unknown field", typedesc.ErrArity)
	ErrMissingArgument   = fmt.Errorf("%w: missing value for field without default", typedesc.ErrArity)

	// ErrNullValue is the validation error for nil in a field that is
	// neither nullable nor defaulted and has no handler.
	ErrNullValue = errors.New("value cannot be nil")

	ErrSchemaMismatch = errors.New("instances belong to different schemas")
)

// FieldError reports a failure while processing one field of an instance.
type FieldError struct {
	Schema string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Schema, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
