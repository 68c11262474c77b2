package record

import (
	"recordcast/typedesc"
)

// Handler overrides generic casting for one field name or declared type.
// It receives the instance under construction, whose earlier fields in the
// execution order are already processed, and the field's current value.
type Handler func(inst *Instance, value any) (any, error)

// registry maps field names and declared types to handlers.
// It is read-only once its schema is finalized.
type registry struct {
	fields map[string]Handler
	types  map[typedesc.Type]Handler
}

// newRegistry starts from the union of the ancestors' registries, most-base
// first, so later ancestors replace same-key entries of earlier ones.
func newRegistry(ancestors ...*registry) *registry {
	r := &registry{
		fields: make(map[string]Handler),
		types:  make(map[typedesc.Type]Handler),
	}

	for _, a := range ancestors {
		if a == nil {
			continue
		}

		for k, h := range a.fields {
			r.fields[k] = h
		}

		for k, h := range a.types {
			r.types[k] = h
		}
	}

	return r
}

func (r *registry) fieldHandler(name string) Handler { return r.fields[name] }

func (r *registry) typeHandler(t typedesc.Type) Handler {
	if t == nil {
		return nil
	}

	return r.types[t]
}
