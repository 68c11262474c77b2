package schemafile

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is the root structure of a schema file.
type File struct {
	Version string      `yaml:"version,omitempty"`
	Schemas []SchemaDef `yaml:"schemas"`
}

// SchemaDef declares one record schema.
type SchemaDef struct {
	Name    string        `yaml:"name"`
	Extends StringOrArray `yaml:"extends,omitempty"`
	// TypeHandlers maps type expressions to catalog handler names.
	TypeHandlers map[string]string `yaml:"type_handlers,omitempty"`
	Fields       []FieldDef        `yaml:"fields"`
}

// FieldDef declares one field.
type FieldDef struct {
	Name      string        `yaml:"name"`
	Type      string        `yaml:"type"`
	Default   yaml.Node     `yaml:"default,omitempty"`
	Nullable  bool          `yaml:"nullable,omitempty"`
	SkipCast  bool          `yaml:"skip_cast,omitempty"`
	IgnoreEnv bool          `yaml:"ignore_env,omitempty"`
	Env       string        `yaml:"env,omitempty"`
	DependsOn StringOrArray `yaml:"depends_on,omitempty"`
	// Compute is a text/template rendered against the already processed
	// fields of the instance. The output is cast to the field type.
	Compute string `yaml:"compute,omitempty"`
	// Handler names a catalog handler used as the field handler.
	Handler string `yaml:"handler,omitempty"`
}

// HasDefault reports whether the default key is present, including an
// explicit null.
func (f *FieldDef) HasDefault() bool {
	return f.Default.Kind != 0
}

// DefaultValue decodes the default into a plain value.
func (f *FieldDef) DefaultValue() (any, error) {
	if !f.HasDefault() {
		return nil, nil
	}

	var v any
	if err := f.Default.Decode(&v); err != nil {
		return nil, fmt.Errorf("field %s: decode default: %w", f.Name, err)
	}

	return v, nil
}

// StringOrArray accepts either a single string or a list of strings.
type StringOrArray []string

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}
