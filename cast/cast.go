package cast

import (
	"errors"
	"fmt"

	"recordcast/typedesc"
)

// Override replaces generic construction for one target type.
type Override func(value any) (any, error)

// Overrides maps target types to their overrides. It is consulted at every
// level of recursion, so an override for int also applies to the elements
// of a list[int] and to the values of a dict[str, int].
type Overrides map[typedesc.Type]Override

// Cast coerces value to target.
//
// Resolution order:
//  1. value already has the target type: returned unchanged
//  2. an override is registered for target: its result is returned
//  3. record target: built from a mapping, an iterable or a single value
//  4. sequence or mapping target: rebuilt element by element
//  5. primitive target: constructed directly from value
//
// Cast is pure and reentrant; it never mutates value.
func Cast(value any, target typedesc.Type, overrides Overrides) (any, error) {
	if target == nil {
		return nil, newError(value, target, ErrNilTarget)
	}

	if typedesc.Conforms(value, target) {
		return value, nil
	}

	if fn, ok := overrides[target]; ok {
		return fn(value)
	}

	switch t := target.(type) {
	case typedesc.Record:
		return castRecord(value, t)
	case typedesc.Sequence:
		return castSequence(value, t, overrides)
	case typedesc.Mapping:
		return castMapping(value, t, overrides)
	case typedesc.Generic:
		return nil, newError(value, target, ErrGenericTarget)
	case typedesc.Placeholder:
		return nil, newError(value, target, ErrPlaceholderTarget)
	case typedesc.Primitive:
		out, err := construct(value, t.Kind)
		if err != nil {
			return nil, newError(value, target, err)
		}

		return out, nil
	default:
		return nil, newError(value, target, fmt.Errorf("%w: unsupported descriptor %T", ErrType, target))
	}
}

func castSequence(value any, target typedesc.Sequence, overrides Overrides) (any, error) {
	if err := checkShape(target); err != nil {
		return nil, newError(value, target, err)
	}

	items, ok := iterate(value)
	if !ok {
		return nil, newError(value, target, ErrNotIterable)
	}

	out := make([]any, len(items))

	for i, item := range items {
		v, err := Cast(item, target.Elem, overrides)
		if err != nil {
			return nil, nest(err, fmt.Sprintf("[%d]", i))
		}

		out[i] = v
	}

	switch target.Container {
	case typedesc.ContainerList:
		return typedesc.List(out), nil
	case typedesc.ContainerTuple:
		return typedesc.Tuple(out), nil
	case typedesc.ContainerSet:
		s := make(typedesc.Set, len(out))
		for _, v := range out {
			if !hashable(v, target.Elem) {
				return nil, newError(value, target, ErrUnhashable)
			}

			s[v] = struct{}{}
		}

		return s, nil
	default: // checkShape admits only sequence containers here
		s := make(typedesc.FrozenSet, len(out))
		for _, v := range out {
			if !hashable(v, target.Elem) {
				return nil, newError(value, target, ErrUnhashable)
			}

			s[v] = struct{}{}
		}

		return s, nil
	}
}

func castMapping(value any, target typedesc.Mapping, overrides Overrides) (any, error) {
	if err := checkShape(target); err != nil {
		return nil, newError(value, target, err)
	}

	pairs, ok := entries(value)
	if !ok {
		return nil, newError(value, target, ErrNotMapping)
	}

	out := make(typedesc.Dict, len(pairs))

	for _, p := range pairs {
		k, err := Cast(p.key, target.Key, overrides)
		if err != nil {
			return nil, nest(err, fmt.Sprintf("[key %v]", p.key))
		}

		if !hashable(k, target.Key) {
			return nil, newError(value, target, ErrUnhashable)
		}

		v, err := Cast(p.value, target.Value, overrides)
		if err != nil {
			return nil, nest(err, fmt.Sprintf("[%v]", p.key))
		}

		out[k] = v
	}

	return out, nil
}

// hashable reports whether v, cast to t, may be a set element or dict key.
// Record instances compare by content and are never hashable.
func hashable(v any, t typedesc.Type) bool {
	if r, ok := t.(typedesc.Record); ok && r.Ref != nil && r.Ref.IsInstance(v) {
		return false
	}

	return typedesc.IsComparable(v)
}

// castRecord dispatches on the shape of value: a mapping binds by field
// name, any other non-text iterable binds positionally, and everything else
// is passed as the single positional argument.
func castRecord(value any, target typedesc.Record) (any, error) {
	if target.Ref == nil {
		return nil, newError(value, target, ErrNilTarget)
	}

	if pairs, ok := entries(value); ok {
		kw := make(map[string]any, len(pairs))

		for _, p := range pairs {
			name, isStr := p.key.(string)
			if !isStr {
				return nil, newError(value, target,
					fmt.Errorf("%w %s from a mapping: key %v is not a field name", ErrRecordConstruct, target.Ref.Name(), p.key))
			}

			kw[name] = p.value
		}

		out, err := target.Ref.FromMap(kw)
		if err != nil {
			return nil, newError(value, target, err)
		}

		return out, nil
	}

	if !isText(value) {
		if items, ok := iterate(value); ok {
			out, err := target.Ref.FromSlice(items)
			if err != nil {
				return nil, newError(value, target, err)
			}

			return out, nil
		}
	}

	out, err := target.Ref.FromValue(value)
	if err != nil {
		if errors.Is(err, typedesc.ErrArity) {
			return nil, newError(value, target, fmt.Errorf(
				"%w %s: value is neither a mapping (keyword binding) nor an iterable (positional binding), "+
					"and single value construction failed: %w", ErrRecordConstruct, target.Ref.Name(), err))
		}

		return nil, newError(value, target, err)
	}

	return out, nil
}

// checkShape rejects container descriptors that are not fully concrete:
// missing type arguments or type variables at any depth. Record descriptors
// are validated when their schema is finalized.
func checkShape(t typedesc.Type) error {
	switch t := t.(type) {
	case nil:
		return ErrGenericTarget
	case typedesc.Placeholder:
		return ErrPlaceholderTarget
	case typedesc.Generic:
		return ErrGenericTarget
	case typedesc.Sequence:
		if !t.Container.IsSequence() {
			return ErrGenericTarget
		}

		return checkShape(t.Elem)
	case typedesc.Mapping:
		if err := checkShape(t.Key); err != nil {
			return err
		}

		return checkShape(t.Value)
	default:
		return nil
	}
}
