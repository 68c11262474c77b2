package record

import (
	"recordcast/cast"
)

// process runs every field of inst through its handler or the coercion
// engine, in the schema's execution order. Each field is written once.
func (s *Schema) process(inst *Instance) error {
	var overrides cast.Overrides

	for _, idx := range s.order {
		f := s.fields[idx]
		if f.Has(FlagSkipCast) {
			continue
		}

		value := inst.values[idx]

		h := s.registry.fieldHandler(f.Name)
		if h == nil {
			h = s.registry.typeHandler(f.Type)
		}

		if h != nil {
			out, err := h(inst, value)
			if err != nil {
				return &FieldError{Schema: s.name, Field: f.Name, Err: err}
			}

			inst.values[idx] = out

			continue
		}

		if value == nil {
			if f.Has(FlagNullable) || f.HasDefault() {
				continue
			}

			return &FieldError{Schema: s.name, Field: f.Name, Err: ErrNullValue}
		}

		if overrides == nil {
			overrides = s.boundOverrides(inst)
		}

		out, err := cast.Cast(value, f.Type, overrides)
		if err != nil {
			return &FieldError{Schema: s.name, Field: f.Name, Err: err}
		}

		inst.values[idx] = out
	}

	return nil
}

// boundOverrides exposes the type handlers to the coercion engine with inst
// bound as their first argument, so nested elements reach them too.
func (s *Schema) boundOverrides(inst *Instance) cast.Overrides {
	overrides := make(cast.Overrides, len(s.registry.types))

	for t, h := range s.registry.types {
		overrides[t] = func(v any) (any, error) { return h(inst, v) }
	}

	return overrides
}
