package record

import (
	"fmt"
	"reflect"
)

// Merge returns a new instance with patch applied on top of the current
// values. A patch entry that is a string-keyed map merges recursively into a
// nested record field instead of replacing it; any other entry replaces the
// field value. The pipeline runs again on the merged values.
func (inst *Instance) Merge(patch map[string]any) (*Instance, error) {
	named := inst.Fields()

	for name, pv := range patch {
		cur, ok := named[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", inst.schema.name, ErrUnknownField, name)
		}

		nested, isRecord := cur.(*Instance)
		sub, isMap := stringMap(pv)

		if isRecord && nested != nil && isMap {
			merged, err := nested.Merge(sub)
			if err != nil {
				return nil, &FieldError{Schema: inst.schema.name, Field: name, Err: err}
			}

			named[name] = merged

			continue
		}

		named[name] = pv
	}

	return inst.schema.Construct(nil, named)
}

// stringMap returns v as map[string]any when v is a map with string keys.
func stringMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	out := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}

	return out, true
}
