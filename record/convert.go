package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"recordcast/cast"
	"recordcast/typedesc"
)

// Codec encodes plain structures for AsJSON and decodes them for FromJSON.
type Codec struct {
	Marshal   func(v any) ([]byte, error)
	Unmarshal func(data []byte, v any) error
}

func defaultCodec() Codec {
	return Codec{
		Marshal: json.Marshal,
		Unmarshal: func(data []byte, v any) error {
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.UseNumber()

			return dec.Decode(v)
		},
	}
}

// AsMap flattens the instance into a plain nested structure: nested records
// become maps, sequences and sets become slices (sets sorted), and
// dictionaries become maps keyed by the key's text form. Feeding the result to
// FromMap of the same schema yields an equal instance.
func (inst *Instance) AsMap() map[string]any {
	out := make(map[string]any, len(inst.values))
	for i, f := range inst.schema.fields {
		out[f.Name] = plain(inst.values[i])
	}

	return out
}

func plain(v any) any {
	switch v := v.(type) {
	case *Instance:
		if v == nil {
			return nil
		}

		return v.AsMap()
	case typedesc.List:
		return plainSlice(v)
	case typedesc.Tuple:
		return plainSlice(v)
	case []any:
		return plainSlice(v)
	case typedesc.Set:
		return plainSlice(v.Sorted())
	case typedesc.FrozenSet:
		return plainSlice(v.Sorted())
	case typedesc.Dict:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[keyText(k)] = plain(val)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = plain(val)
		}

		return out
	}

	return v
}

// keyText renders a dict key in the text form the cast package parses back:
// RFC 3339 times, canonical UUIDs and durations like 2h0m0s.
func keyText(k any) string {
	if text, err := cast.Cast(k, typedesc.String, nil); err == nil {
		return text.(string)
	}

	return fmt.Sprint(k)
}

func plainSlice(items []any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = plain(it)
	}

	return out
}

// AsJSON encodes AsMap with the schema's JSON codec.
func (inst *Instance) AsJSON() ([]byte, error) {
	return inst.schema.codec.Marshal(inst.AsMap())
}

// AsYAML encodes AsMap as YAML.
func (inst *Instance) AsYAML() ([]byte, error) {
	return yaml.Marshal(inst.AsMap())
}

// FromJSON decodes a JSON object with the schema's codec and constructs an
// instance from it. Numbers are decoded as json.Number.
func (s *Schema) FromJSON(data []byte) (*Instance, error) {
	var m map[string]any
	if err := s.codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: decode json: %w", s.name, err)
	}

	return s.FromMap(m)
}

// FromYAML decodes a YAML mapping and constructs an instance from it.
func (s *Schema) FromYAML(data []byte) (*Instance, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: decode yaml: %w", s.name, err)
	}

	return s.FromMap(m)
}
