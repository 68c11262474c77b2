package record

import (
	"recordcast/typedesc"
)

// FlagEnum is a set of independent field flags.
type FlagEnum int

const (
	FlagSkipCast   FlagEnum = 1 << iota // value is stored exactly as supplied, handlers never run
	FlagNullable                        // nil is accepted when no handler applies
	FlagIgnoreEnv                       // environment loaders never read the field
	FlagCalculated                      // value is produced by the field handler from other fields

	FlagNone FlagEnum = 0 // no flags selected
)

// Field is one field descriptor of a schema.
type Field struct {
	Name  string
	Type  typedesc.Type
	Flags FlagEnum
	// DependsOn names the fields whose values must be processed before this
	// field's handler runs. A field with dependencies needs a field handler.
	DependsOn []string
	// Tags carry free-form metadata for loaders, e.g. "env".
	Tags map[string]string

	defaultValue any
	defaultFunc  func() any
	hasDefault   bool
}

// FieldOption configures a Field.
type FieldOption func(*Field)

// WithDefault sets the value used when construction does not supply one.
// Container defaults are shared between instances; use WithDefaultFunc for
// values that are mutated later.
func WithDefault(v any) FieldOption {
	return func(f *Field) {
		f.defaultValue = v
		f.defaultFunc = nil
		f.hasDefault = true
	}
}

// WithDefaultFunc sets a factory called once per construction that needs a default.
func WithDefaultFunc(fn func() any) FieldOption {
	return func(f *Field) {
		f.defaultValue = nil
		f.defaultFunc = fn
		f.hasDefault = true
	}
}

func WithFlags(flags FlagEnum) FieldOption {
	return func(f *Field) { f.Flags |= flags }
}

func DependsOn(names ...string) FieldOption {
	return func(f *Field) { f.DependsOn = append(f.DependsOn, names...) }
}

func WithTag(key, value string) FieldOption {
	return func(f *Field) {
		if f.Tags == nil {
			f.Tags = make(map[string]string)
		}

		f.Tags[key] = value
	}
}

func NewField(name string, t typedesc.Type, opts ...FieldOption) Field {
	f := Field{Name: name, Type: t}
	for _, opt := range opts {
		opt(&f)
	}

	return f
}

// NullableField declares a field that accepts nil.
func NullableField(name string, t typedesc.Type, opts ...FieldOption) Field {
	return NewField(name, t, append([]FieldOption{WithFlags(FlagNullable)}, opts...)...)
}

// NoncastedField declares a field whose value is kept as supplied.
func NoncastedField(name string, t typedesc.Type, opts ...FieldOption) Field {
	return NewField(name, t, append([]FieldOption{WithFlags(FlagSkipCast)}, opts...)...)
}

// CalculatedField declares a field computed by its field handler from the
// fields it depends on. It defaults to nil and is never read from the
// environment.
func CalculatedField(name string, t typedesc.Type, dependsOn []string, opts ...FieldOption) Field {
	base := []FieldOption{WithDefault(nil), WithFlags(FlagIgnoreEnv | FlagCalculated), DependsOn(dependsOn...)}
	return NewField(name, t, append(base, opts...)...)
}

func (f Field) Has(flag FlagEnum) bool { return f.Flags&flag == flag }

func (f Field) HasDefault() bool { return f.hasDefault }

// Default returns the default value, calling the default factory if one is set.
func (f Field) Default() any {
	if f.defaultFunc != nil {
		return f.defaultFunc()
	}

	return f.defaultValue
}

// Tag returns the tag value for key.
func (f Field) Tag(key string) (string, bool) {
	v, ok := f.Tags[key]
	return v, ok
}
