package record

import (
	"fmt"
	"reflect"
	"strings"
)

// Instance is a constructed record. Its field values are fixed once
// construction succeeds; use Replace or Merge to derive a new instance.
type Instance struct {
	schema *Schema
	values []any
}

func (inst *Instance) Schema() *Schema { return inst.schema }

// Get returns the current value of the named field. During construction,
// handlers may read fields that precede theirs in the execution order.
func (inst *Instance) Get(name string) (any, bool) {
	i, ok := inst.schema.index[name]
	if !ok {
		return nil, false
	}

	return inst.values[i], true
}

// MustGet is like Get but panics on an unknown field name.
func (inst *Instance) MustGet(name string) any {
	v, ok := inst.Get(name)
	if !ok {
		panic(fmt.Sprintf("record %s has no field %q", inst.schema.name, name))
	}

	return v
}

// Fields returns a copy of the field values keyed by name. Nested records
// are kept as instances; see AsMap for a fully plain structure.
func (inst *Instance) Fields() map[string]any {
	out := make(map[string]any, len(inst.values))
	for i, f := range inst.schema.fields {
		out[f.Name] = inst.values[i]
	}

	return out
}

// Value returns the named field of inst as T.
func Value[T any](inst *Instance, name string) (T, error) {
	var zero T

	v, ok := inst.Get(name)
	if !ok {
		return zero, fmt.Errorf("%s: %w %q", inst.schema.name, ErrUnknownField, name)
	}

	if v == nil {
		return zero, nil
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s.%s: holds %T, not %T", inst.schema.name, name, v, zero)
	}

	return t, nil
}

// Equal reports whether both instances belong to the same schema and hold
// deeply equal field values.
func (inst *Instance) Equal(other *Instance) bool {
	if inst == nil || other == nil {
		return inst == other
	}

	if inst.schema != other.schema {
		return false
	}

	for i := range inst.values {
		if !valuesEqual(inst.values[i], other.values[i]) {
			return false
		}
	}

	return true
}

func valuesEqual(a, b any) bool {
	ia, okA := a.(*Instance)
	ib, okB := b.(*Instance)

	if okA || okB {
		return okA && okB && ia.Equal(ib)
	}

	return reflect.DeepEqual(a, b)
}

func (inst *Instance) String() string {
	var sb strings.Builder

	sb.WriteString(inst.schema.name)
	sb.WriteByte('(')

	for i, f := range inst.schema.fields {
		if i > 0 {
			sb.WriteString(", ")
		}

		fmt.Fprintf(&sb, "%s=%v", f.Name, inst.values[i])
	}

	sb.WriteByte(')')

	return sb.String()
}

// Replace constructs a new instance from the current field values with the
// given fields replaced. The whole pipeline runs again.
func (inst *Instance) Replace(changes map[string]any) (*Instance, error) {
	named := inst.Fields()

	for name, v := range changes {
		if _, ok := inst.schema.index[name]; !ok {
			return nil, fmt.Errorf("%s: %w %q", inst.schema.name, ErrUnknownField, name)
		}

		named[name] = v
	}

	return inst.schema.Construct(nil, named)
}
