package record

import (
	"fmt"
	"sort"
	"strings"

	"recordcast/internal/diagnostic"
	"recordcast/typedesc"
)

// Schema is the finalized description of a record type: its fields in
// declaration order, the merged handler registry and the fixed execution
// order. A Schema is immutable and safe for concurrent use.
type Schema struct {
	name     string
	parents  []*Schema
	fields   []Field
	index    map[string]int
	registry *registry
	order    []int
	codec    Codec
	ctor     *constructor
	warnings []diagnostic.Diagnostic
}

// Builder collects a schema declaration. Finalize turns it into a Schema.
type Builder struct {
	name          string
	parents       []*Schema
	fields        []Field
	fieldHandlers map[string]Handler
	typeHandlers  map[typedesc.Type]Handler
	codec         *Codec
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:          name,
		fieldHandlers: make(map[string]Handler),
		typeHandlers:  make(map[typedesc.Type]Handler),
	}
}

// Extends makes the schema inherit fields, handlers and codec from parents.
// Parents are listed most-base first: later parents override earlier ones
// and the schema's own declarations override all of them.
func (b *Builder) Extends(parents ...*Schema) *Builder {
	b.parents = append(b.parents, parents...)
	return b
}

// Field declares fields. A field named like an inherited one replaces it in
// place, keeping the inherited position.
func (b *Builder) Field(fields ...Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// FieldHandler registers the handler for the named field.
func (b *Builder) FieldHandler(name string, h Handler) *Builder {
	b.fieldHandlers[name] = h
	return b
}

// TypeHandler registers the handler for every field declared with type t,
// including elements and values nested in containers of fields without a
// more specific handler.
func (b *Builder) TypeHandler(t typedesc.Type, h Handler) *Builder {
	b.typeHandlers[t] = h
	return b
}

// JSONCodec overrides the JSON encoding used by AsJSON and FromJSON.
func (b *Builder) JSONCodec(c Codec) *Builder {
	b.codec = &c
	return b
}

// Finalize validates the declaration, merges ancestor handler registries and
// computes the execution order. All definition errors are reported together.
func (b *Builder) Finalize() (*Schema, error) {
	var diags diagnostic.Diagnostics

	if b.name == "" {
		diags.AddError(ErrEmptyName, "empty_schema_name", "schema name is empty", "", "")
	}

	s := &Schema{
		name:    b.name,
		parents: append([]*Schema(nil), b.parents...),
		index:   make(map[string]int),
		codec:   defaultCodec(),
	}

	ancestors := make([]*registry, 0, len(b.parents))

	for _, p := range b.parents {
		for _, f := range p.fields {
			s.putField(f)
		}

		ancestors = append(ancestors, p.registry)
		s.codec = p.codec
	}

	own := make(map[string]struct{}, len(b.fields))

	for _, f := range b.fields {
		if f.Name == "" {
			diags.AddError(ErrEmptyName, "empty_field_name", "field name is empty", b.name, "")
			continue
		}

		if _, dup := own[f.Name]; dup {
			diags.AddError(ErrDuplicateField, "duplicate_field",
				fmt.Sprintf("field %q is declared twice", f.Name), b.name, f.Name)

			continue
		}

		own[f.Name] = struct{}{}

		if f.Type == nil {
			diags.AddError(ErrNilType, "nil_field_type", "field type is nil", b.name, f.Name)
		}

		s.putField(f)
	}

	if b.codec != nil {
		s.codec = *b.codec
	}

	s.registry = newRegistry(ancestors...)
	for name, h := range b.fieldHandlers {
		s.registry.fields[name] = h
	}

	for t, h := range b.typeHandlers {
		s.registry.types[t] = h
	}

	for _, name := range sortedNames(s.registry.fields) {
		if _, ok := s.index[name]; !ok {
			diags.AddWarning("handler_unknown_field",
				fmt.Sprintf("field handler registered for undeclared field %q", name), b.name, name)
		}
	}

	for _, f := range s.fields {
		for _, dep := range f.DependsOn {
			if _, ok := s.index[dep]; !ok {
				diags.AddError(ErrUnknownDependency, "unknown_dependency",
					fmt.Sprintf("depends on undeclared field %q", dep), b.name, f.Name)
			}
		}

		if len(f.DependsOn) > 0 && s.registry.fieldHandler(f.Name) == nil {
			diags.AddError(ErrMissingFieldHandler, "missing_field_handler",
				"declares dependencies but no field handler is registered", b.name, f.Name)
		}
	}

	if diags.HasErrors() {
		return nil, diags.Err()
	}

	order, err := schedule(s.fields, s.index)
	if err != nil {
		diags.AddError(ErrDependencyCycle, "dependency_cycle", err.Error(), b.name, "")
		return nil, diags.Err()
	}

	s.order = order
	s.warnings = diags.Warnings
	s.ctor = &constructor{schema: s}

	return s, nil
}

// MustFinalize is like Finalize but panics on error.
func (b *Builder) MustFinalize() *Schema {
	s, err := b.Finalize()
	if err != nil {
		panic(err)
	}

	return s
}

func (s *Schema) putField(f Field) {
	if i, ok := s.index[f.Name]; ok {
		s.fields[i] = f
		return
	}

	s.index[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)
}

func sortedNames(m map[string]Handler) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (s *Schema) Name() string { return s.name }

// Type returns the descriptor used to declare fields holding this record.
func (s *Schema) Type() typedesc.Type { return typedesc.Record{Ref: s.ctor} }

// Parents returns the schemas this one extends.
func (s *Schema) Parents() []*Schema { return append([]*Schema(nil), s.parents...) }

// Fields returns the field descriptors in declaration order.
func (s *Schema) Fields() []Field { return append([]Field(nil), s.fields...) }

// Field returns the named field descriptor.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}

	return s.fields[i], true
}

// FieldNames returns the field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}

	return names
}

// Order returns the field names in execution order.
func (s *Schema) Order() []string {
	names := make([]string, len(s.order))
	for i, idx := range s.order {
		names[i] = s.fields[idx].Name
	}

	return names
}

// FieldHandlerFor returns the handler registered for the field name, or nil.
func (s *Schema) FieldHandlerFor(name string) Handler { return s.registry.fieldHandler(name) }

// TypeHandlerFor returns the handler registered for the declared type, or nil.
func (s *Schema) TypeHandlerFor(t typedesc.Type) Handler { return s.registry.typeHandler(t) }

// Warnings returns the non-fatal findings of Finalize.
func (s *Schema) Warnings() []string {
	out := make([]string, len(s.warnings))
	for i, w := range s.warnings {
		out[i] = w.String()
	}

	return out
}

// New constructs an instance from positional values.
func (s *Schema) New(args ...any) (*Instance, error) {
	return s.Construct(args, nil)
}

// FromMap constructs an instance from values keyed by field name.
func (s *Schema) FromMap(values map[string]any) (*Instance, error) {
	return s.Construct(nil, values)
}

// MustNew is like New but panics on error.
func (s *Schema) MustNew(args ...any) *Instance {
	inst, err := s.New(args...)
	if err != nil {
		panic(err)
	}

	return inst
}

// Construct binds positional values first, then named values, fills the
// remaining fields from their defaults and runs the field pipeline.
// No instance is returned when any step fails.
func (s *Schema) Construct(args []any, named map[string]any) (*Instance, error) {
	if len(args) > len(s.fields) {
		return nil, fmt.Errorf("%s: %w: takes %d, got %d", s.name, ErrTooManyArguments, len(s.fields), len(args))
	}

	values := make([]any, len(s.fields))
	bound := make([]bool, len(s.fields))

	for i, v := range args {
		values[i] = v
		bound[i] = true
	}

	for _, name := range sortedKeys(named) {
		i, ok := s.index[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", s.name, ErrUnknownField, name)
		}

		if bound[i] {
			return nil, fmt.Errorf("%s: %w: %q", s.name, ErrDuplicateArgument, name)
		}

		values[i] = named[name]
		bound[i] = true
	}

	var missing []string

	for i, f := range s.fields {
		if bound[i] {
			continue
		}

		if !f.HasDefault() {
			missing = append(missing, f.Name)
			continue
		}

		values[i] = f.Default()
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", s.name, ErrMissingArgument, strings.Join(missing, ", "))
	}

	inst := &Instance{schema: s, values: values}
	if err := s.process(inst); err != nil {
		return nil, err
	}

	return inst, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// constructor exposes a schema to the cast package as a record target.
type constructor struct {
	schema *Schema
}

func (c *constructor) Name() string { return c.schema.name }

func (c *constructor) IsInstance(v any) bool {
	inst, ok := v.(*Instance)
	return ok && inst != nil && inst.schema == c.schema
}

func (c *constructor) FromMap(values map[string]any) (any, error) {
	return c.schema.Construct(nil, values)
}

func (c *constructor) FromSlice(values []any) (any, error) {
	return c.schema.Construct(values, nil)
}

func (c *constructor) FromValue(value any) (any, error) {
	return c.schema.Construct([]any{value}, nil)
}

// SchemaOf returns the schema behind a descriptor returned by Schema.Type.
func SchemaOf(t typedesc.Type) (*Schema, bool) {
	r, ok := t.(typedesc.Record)
	if !ok {
		return nil, false
	}

	c, ok := r.Ref.(*constructor)
	if !ok || c == nil {
		return nil, false
	}

	return c.schema, true
}
