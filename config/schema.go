package config

import (
	"strings"

	"recordcast/cast"
	"recordcast/record"
	"recordcast/typedesc"
)

var truthy = map[string]struct{}{"y": {}, "yes": {}, "1": {}, "true": {}, "on": {}}

// TextualBool is the bool type handler of config schemas. Strings are true
// when they read y, yes, 1, true or on, ignoring case, and false otherwise.
// Other values are true when non-zero or non-empty.
func TextualBool(_ *record.Instance, v any) (any, error) {
	if s, ok := v.(string); ok {
		_, yes := truthy[strings.ToLower(strings.TrimSpace(s))]
		return yes, nil
	}

	if v == nil {
		return false, nil
	}

	return cast.Cast(v, typedesc.Bool, nil)
}

// NewSchema starts a config schema declaration with TextualBool registered
// for bool fields.
func NewSchema(name string) *record.Builder {
	return record.NewBuilder(name).TypeHandler(typedesc.Bool, TextualBool)
}
