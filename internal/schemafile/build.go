package schemafile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"recordcast/cast"
	"recordcast/config"
	"recordcast/internal/diagnostic"
	"recordcast/internal/toposort"
	"recordcast/record"
	"recordcast/typedesc"
)

var (
	ErrDuplicateSchema = errors.New("schema is declared twice")
	ErrUnknownSchema   = errors.New("unknown schema")
	ErrUnknownHandler  = errors.New("unknown handler")
	ErrSchemaCycle     = errors.New("schemas reference each other in a cycle")
	ErrInvalidTemplate = errors.New("invalid compute template")
	ErrInvalidDefault  = errors.New("invalid default")
	ErrConflict        = errors.New("conflicting field options")
)

// Registry holds the schemas built from a file.
type Registry struct {
	order   []string
	schemas map[string]*record.Schema
}

// Lookup returns the schema declared under name.
func (r *Registry) Lookup(name string) (*record.Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns the schema names in build order: every schema comes after
// the schemas it extends or references.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Build finalizes every schema of f. Bool fields get the textual bool
// handler of config schemas unless a type handler overrides it. Handler
// names are resolved in catalog; a nil catalog means DefaultCatalog.
func Build(f *File, catalog Catalog) (*Registry, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	var diags diagnostic.Diagnostics

	index := make(map[string]int, len(f.Schemas))

	for i, sd := range f.Schemas {
		if sd.Name == "" {
			diags.AddError(record.ErrEmptyName, "empty_schema_name", fmt.Sprintf("schema #%d has no name", i), "", "")
			continue
		}

		if _, dup := index[sd.Name]; dup {
			diags.AddError(ErrDuplicateSchema, "duplicate_schema", fmt.Sprintf("schema %q is declared twice", sd.Name), sd.Name, "")
			continue
		}

		index[sd.Name] = i
	}

	deps := make([][]int, len(f.Schemas))

	for i, sd := range f.Schemas {
		deps[i] = references(&diags, sd, index)
	}

	if diags.HasErrors() {
		return nil, diags.Err()
	}

	order, err := toposort.Sort(len(f.Schemas), func(i int) []int { return deps[i] })
	if err != nil {
		var ce *toposort.CycleError
		if errors.As(err, &ce) {
			names := make([]string, len(ce.Nodes))
			for i, n := range ce.Nodes {
				names[i] = f.Schemas[n].Name
			}

			diags.AddError(ErrSchemaCycle, "schema_cycle", "cycle among "+strings.Join(names, ", "), "", "")

			return nil, diags.Err()
		}

		return nil, err
	}

	reg := &Registry{schemas: make(map[string]*record.Schema, len(f.Schemas))}
	resolve := func(name string) (typedesc.Type, bool) {
		s, ok := reg.schemas[name]
		if !ok {
			return nil, false
		}

		return s.Type(), true
	}

	for _, i := range order {
		sd := f.Schemas[i]

		s, err := buildSchema(&diags, sd, reg, resolve, catalog)
		if err != nil {
			diags.AddError(err, "finalize_failed", err.Error(), sd.Name, "")
			continue
		}

		if s == nil {
			continue
		}

		reg.schemas[sd.Name] = s
		reg.order = append(reg.order, sd.Name)
	}

	if diags.HasErrors() {
		return nil, diags.Err()
	}

	return reg, nil
}

// references validates the names sd mentions and returns the indices of the
// schemas it extends or references.
func references(diags *diagnostic.Diagnostics, sd SchemaDef, index map[string]int) []int {
	var out []int

	seen := make(map[int]struct{})
	add := func(name string) bool {
		i, ok := index[name]
		if !ok {
			return false
		}

		if _, dup := seen[i]; !dup {
			seen[i] = struct{}{}
			out = append(out, i)
		}

		return true
	}

	for _, parent := range sd.Extends {
		if !add(parent) {
			diags.AddError(ErrUnknownSchema, "unknown_parent", fmt.Sprintf("extends unknown schema %q", parent), sd.Name, "")
		}
	}

	collect := func(expr, field string) {
		_, err := typedesc.Parse(expr, func(name string) (typedesc.Type, bool) {
			// any known name parses; real descriptors are bound at build time
			return typedesc.String, add(name)
		})
		if err != nil {
			diags.AddError(err, "invalid_type", err.Error(), sd.Name, field)
		}
	}

	for _, fd := range sd.Fields {
		collect(fd.Type, fd.Name)
	}

	for _, expr := range sortedKeys(sd.TypeHandlers) {
		collect(expr, "")
	}

	return out
}

func buildSchema(
	diags *diagnostic.Diagnostics,
	sd SchemaDef,
	reg *Registry,
	resolve typedesc.Resolver,
	catalog Catalog,
) (*record.Schema, error) {
	b := config.NewSchema(sd.Name)

	for _, parent := range sd.Extends {
		p, ok := reg.Lookup(parent)
		if !ok {
			// the parent failed to build and is already reported
			return nil, nil
		}

		b.Extends(p)
	}

	for _, expr := range sortedKeys(sd.TypeHandlers) {
		name := sd.TypeHandlers[expr]

		t, err := typedesc.Parse(expr, resolve)
		if err != nil {
			diags.AddError(err, "invalid_type", err.Error(), sd.Name, "")
			continue
		}

		h, ok := catalog[name]
		if !ok {
			diags.AddError(ErrUnknownHandler, "unknown_handler", fmt.Sprintf("type handler %q is not in the catalog", name), sd.Name, "")
			continue
		}

		b.TypeHandler(t, h)
	}

	failed := false

	for i := range sd.Fields {
		fd := &sd.Fields[i]

		field, handler, ok := buildField(diags, sd.Name, fd, resolve, catalog)
		if !ok {
			failed = true
			continue
		}

		b.Field(field)

		if handler != nil {
			b.FieldHandler(fd.Name, handler)
		}
	}

	if failed {
		return nil, nil
	}

	return b.Finalize()
}

func buildField(
	diags *diagnostic.Diagnostics,
	schema string,
	fd *FieldDef,
	resolve typedesc.Resolver,
	catalog Catalog,
) (record.Field, record.Handler, bool) {
	t, err := typedesc.Parse(fd.Type, resolve)
	if err != nil {
		diags.AddError(err, "invalid_type", err.Error(), schema, fd.Name)
		return record.Field{}, nil, false
	}

	var opts []record.FieldOption

	if fd.HasDefault() {
		v, err := fd.DefaultValue()
		if err != nil {
			diags.AddError(ErrInvalidDefault, "invalid_default", err.Error(), schema, fd.Name)
			return record.Field{}, nil, false
		}

		opts = append(opts, record.WithDefault(v))
	}

	var flags record.FlagEnum

	if fd.Nullable {
		flags |= record.FlagNullable
	}

	if fd.SkipCast {
		flags |= record.FlagSkipCast
	}

	if fd.IgnoreEnv {
		flags |= record.FlagIgnoreEnv
	}

	if fd.Env != "" {
		opts = append(opts, record.WithTag(config.EnvTag, fd.Env))
	}

	opts = append(opts, record.WithFlags(flags), record.DependsOn(fd.DependsOn...))

	var handler record.Handler

	switch {
	case fd.Compute != "" && fd.Handler != "":
		diags.AddError(ErrConflict, "compute_and_handler", "compute and handler are mutually exclusive", schema, fd.Name)
		return record.Field{}, nil, false
	case fd.Compute != "":
		tmpl, err := template.New(schema + "." + fd.Name).Option("missingkey=error").Parse(fd.Compute)
		if err != nil {
			diags.AddError(ErrInvalidTemplate, "invalid_template", err.Error(), schema, fd.Name)
			return record.Field{}, nil, false
		}

		handler = computeHandler(tmpl, t)

		if !fd.HasDefault() {
			opts = append(opts, record.WithDefault(nil))
		}

		opts = append(opts, record.WithFlags(record.FlagIgnoreEnv|record.FlagCalculated))
	case fd.Handler != "":
		h, ok := catalog[fd.Handler]
		if !ok {
			diags.AddError(ErrUnknownHandler, "unknown_handler", fmt.Sprintf("handler %q is not in the catalog", fd.Handler), schema, fd.Name)
			return record.Field{}, nil, false
		}

		handler = h
	}

	return record.NewField(fd.Name, t, opts...), handler, true
}

// computeHandler renders tmpl against the plain form of the instance and
// casts the output to t.
func computeHandler(tmpl *template.Template, t typedesc.Type) record.Handler {
	return func(inst *record.Instance, _ any) (any, error) {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, inst.AsMap()); err != nil {
			return nil, fmt.Errorf("compute: %w", err)
		}

		return cast.Cast(sb.String(), t, nil)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
