// Package config builds records from environment variables and files and
// keeps a hot-reloadable current instance.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"recordcast/metrics"
	"recordcast/record"
	"recordcast/typedesc"
)

const (
	DefaultPrefix    = "RECORDCAST"
	DefaultSeparator = ","

	// EnvTag overrides the variable name of a field. On a nested record
	// field it replaces the prefix of the nested fields.
	EnvTag = "env"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config file format")
	ErrMalformedPair     = errors.New("expected key=value")
)

// Loader reads field values for a schema from the environment and files.
type Loader struct {
	prefix    string
	separator string
	lookup    func(string) (string, bool)
	logger    zerolog.Logger
	metrics   *metrics.Collector
}

// Option configures a Loader.
type Option func(*Loader)

// WithPrefix sets the variable name prefix. Default is DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(l *Loader) { l.prefix = prefix }
}

// WithSeparator sets the separator used to split sequence and mapping values.
func WithSeparator(sep string) Option {
	return func(l *Loader) { l.separator = sep }
}

// WithLookup replaces os.LookupEnv.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(l *Loader) { l.lookup = fn }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(l *Loader) { l.metrics = m }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		prefix:    DefaultPrefix,
		separator: DefaultSeparator,
		lookup:    os.LookupEnv,
		logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// EnvName returns the variable read for field f under prefix.
func (l *Loader) EnvName(prefix string, f record.Field) string {
	if name, ok := f.Tag(EnvTag); ok && name != "" {
		return name
	}

	return envJoin(prefix, f.Name)
}

func envJoin(prefix, name string) string {
	name = strings.ToUpper(name)
	if prefix == "" {
		return name
	}

	return strings.ToUpper(prefix) + "_" + name
}

// Environ collects the raw values of schema's fields from the environment.
// Unset variables are left out so field defaults apply. Fields flagged
// FlagIgnoreEnv are never read. Nested record fields are read recursively
// under PREFIX_FIELD and included only when at least one of their
// variables is set.
func (l *Loader) Environ(schema *record.Schema) (map[string]any, error) {
	return l.environ(schema, l.prefix)
}

func (l *Loader) environ(schema *record.Schema, prefix string) (map[string]any, error) {
	values := make(map[string]any)

	for _, f := range schema.Fields() {
		if f.Has(record.FlagIgnoreEnv) {
			continue
		}

		name := l.EnvName(prefix, f)

		if nested, ok := record.SchemaOf(f.Type); ok {
			sub, err := l.environ(nested, name)
			if err != nil {
				return nil, err
			}

			if len(sub) > 0 {
				values[f.Name] = sub
			}

			continue
		}

		raw, ok := l.lookup(name)
		if !ok {
			continue
		}

		v, err := l.parse(raw, f.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		l.logger.Debug().Str("schema", schema.Name()).Str("field", f.Name).Str("var", name).Msg("read from environment")

		values[f.Name] = v
	}

	return values, nil
}

// parse splits raw text for container targets. Scalars are returned as
// text and left to the schema's handlers and the cast package.
func (l *Loader) parse(raw string, t typedesc.Type) (any, error) {
	switch t.(type) {
	case typedesc.Sequence:
		return l.split(raw), nil
	case typedesc.Mapping:
		out := make(map[string]any)

		for _, item := range l.split(raw) {
			k, v, ok := strings.Cut(item.(string), "=")
			if !ok {
				return nil, fmt.Errorf("%w, got %q", ErrMalformedPair, item)
			}

			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}

		return out, nil
	default:
		return raw, nil
	}
}

func (l *Loader) split(raw string) []any {
	if strings.TrimSpace(raw) == "" {
		return []any{}
	}

	parts := strings.Split(raw, l.separator)
	out := make([]any, len(parts))

	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}

	return out
}

// FromEnviron constructs an instance of schema from environment variables.
func (l *Loader) FromEnviron(schema *record.Schema) (*record.Instance, error) {
	inst, err := l.fromEnviron(schema)
	l.metrics.ObserveLoad(schema.Name(), "env", err)

	return inst, err
}

func (l *Loader) fromEnviron(schema *record.Schema) (*record.Instance, error) {
	values, err := l.Environ(schema)
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	inst, err := schema.FromMap(values)
	if err != nil {
		return nil, fmt.Errorf("build %s from environment: %w", schema.Name(), err)
	}

	return inst, nil
}

// ReadFile decodes a JSON or YAML file, chosen by extension, into a plain
// map. ${VAR} references are expanded before decoding.
func (l *Loader) ReadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.Expand(string(data), l.getenv))

	var values map[string]any

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		if err := dec.Decode(&values); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if values == nil {
		values = make(map[string]any)
	}

	return values, nil
}

func (l *Loader) getenv(name string) string {
	v, _ := l.lookup(name)
	return v
}

// LoadFile constructs an instance of schema from a JSON or YAML file.
func (l *Loader) LoadFile(path string, schema *record.Schema) (*record.Instance, error) {
	inst, err := l.loadFile(path, schema)
	l.metrics.ObserveLoad(schema.Name(), "file", err)

	return inst, err
}

func (l *Loader) loadFile(path string, schema *record.Schema) (*record.Instance, error) {
	values, err := l.ReadFile(path)
	if err != nil {
		return nil, err
	}

	inst, err := schema.FromMap(values)
	if err != nil {
		return nil, fmt.Errorf("build %s from %s: %w", schema.Name(), path, err)
	}

	return inst, nil
}

// Load reads path when it exists, overlays environment variables and
// constructs an instance of schema. An empty or missing path means the
// environment and the field defaults are the only sources.
func (l *Loader) Load(path string, schema *record.Schema) (*record.Instance, error) {
	inst, err := l.load(path, schema)
	l.metrics.ObserveLoad(schema.Name(), "merged", err)

	return inst, err
}

func (l *Loader) load(path string, schema *record.Schema) (*record.Instance, error) {
	values := make(map[string]any)

	if path != "" {
		fromFile, err := l.ReadFile(path)

		switch {
		case err == nil:
			values = fromFile
		case errors.Is(err, os.ErrNotExist):
			l.logger.Debug().Str("path", path).Msg("config file not found, using environment only")
		default:
			return nil, err
		}
	}

	env, err := l.Environ(schema)
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	overlay(schema, values, env)

	inst, err := schema.FromMap(values)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", schema.Name(), err)
	}

	l.logger.Info().Str("schema", schema.Name()).Str("path", path).Int("env_fields", len(env)).Msg("configuration loaded")

	return inst, nil
}

// overlay copies the environment values src over the file values dst.
// Values of nested record fields are merged field by field; every other
// value, dictionaries included, replaces the file value.
func overlay(schema *record.Schema, dst, src map[string]any) {
	for k, v := range src {
		if f, ok := schema.Field(k); ok {
			if nested, isRecord := record.SchemaOf(f.Type); isRecord {
				sub, isMap := v.(map[string]any)
				cur, curIsMap := dst[k].(map[string]any)

				if isMap && curIsMap {
					overlay(nested, cur, sub)
					continue
				}
			}
		}

		dst[k] = v
	}
}
