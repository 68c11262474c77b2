package analyze

import (
	"errors"
	"fmt"
	"go/types"

	"gopkg.in/yaml.v3"

	"recordcast/internal/schemafile"
)

var (
	ErrUnsupportedType = errors.New("unsupported field type")
	ErrNameClash       = errors.New("types export to the same schema name")
)

var (
	timeID     = TypeID{PkgPath: "time", Name: "Time"}
	durationID = TypeID{PkgPath: "time", Name: "Duration"}
	uuidID     = TypeID{PkgPath: "github.com/google/uuid", Name: "UUID"}
)

// Exporter converts analyzed struct types into schema declarations.
// Fields of unsupported types are left out and reported as warnings.
type Exporter struct {
	names    map[string]TypeID
	queue    []*TypeInfo
	warnings []string
}

// NewExporter creates an Exporter.
func NewExporter() *Exporter {
	return &Exporter{names: make(map[string]TypeID)}
}

// Export declares a schema for every root and for every struct the roots
// reference, in discovery order.
func (e *Exporter) Export(roots ...*TypeInfo) (*schemafile.File, error) {
	for _, root := range roots {
		if root.Kind != TypeKindStruct || !root.IsNamed() {
			return nil, fmt.Errorf("%w: %s is %s", ErrNotStruct, root.ID, root.Kind)
		}

		if _, err := e.enqueue(root); err != nil {
			return nil, err
		}
	}

	f := &schemafile.File{Version: "1"}

	for len(e.queue) > 0 {
		info := e.queue[0]
		e.queue = e.queue[1:]

		sd, err := e.schema(info)
		if err != nil {
			return nil, err
		}

		f.Schemas = append(f.Schemas, sd)
	}

	return f, nil
}

// Warnings returns the fields left out so far.
func (e *Exporter) Warnings() []string {
	return e.warnings
}

func (e *Exporter) enqueue(info *TypeInfo) (string, error) {
	name := info.ID.Name

	if other, seen := e.names[name]; seen {
		if other != info.ID {
			return "", fmt.Errorf("%w: %s and %s", ErrNameClash, other, info.ID)
		}

		return name, nil
	}

	e.names[name] = info.ID
	e.queue = append(e.queue, info)

	return name, nil
}

func (e *Exporter) schema(info *TypeInfo) (schemafile.SchemaDef, error) {
	sd := schemafile.SchemaDef{Name: info.ID.Name}
	path := NewTypePath(info.ID.Name)

	for i := range info.Fields {
		fi := &info.Fields[i]

		opts := fi.Options()
		if opts.Skip {
			continue
		}

		if fi.Embedded && fi.Type.Kind == TypeKindStruct && fi.Type.IsNamed() {
			parent, err := e.enqueue(fi.Type)
			if err != nil {
				return sd, err
			}

			sd.Extends = append(sd.Extends, parent)

			continue
		}

		fd, err := e.field(path.Field(fi.Name), fi, opts)
		if errors.Is(err, ErrUnsupportedType) {
			e.warnings = append(e.warnings, err.Error())
			continue
		}

		if err != nil {
			return sd, err
		}

		sd.Fields = append(sd.Fields, fd)
	}

	return sd, nil
}

func (e *Exporter) field(path *TypePath, fi *FieldInfo, opts FieldTag) (schemafile.FieldDef, error) {
	t := fi.Type
	nullable := opts.Nullable

	if t.Kind == TypeKindPointer {
		t = t.ElemType
		nullable = true
	}

	expr, err := e.typeExpr(path, t)
	if err != nil {
		return schemafile.FieldDef{}, err
	}

	fd := schemafile.FieldDef{
		Name:      fi.RecordName(),
		Type:      expr,
		Nullable:  nullable,
		SkipCast:  opts.SkipCast,
		IgnoreEnv: opts.IgnoreEnv,
		Env:       opts.Env,
	}

	switch {
	case opts.HasDefault:
		fd.Default = yaml.Node{Kind: yaml.ScalarNode, Value: opts.Default}
	case nullable:
		fd.Default = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}

	return fd, nil
}

func (e *Exporter) typeExpr(path *TypePath, t *TypeInfo) (string, error) {
	switch t.ID {
	case timeID:
		return "time", nil
	case durationID:
		return "duration", nil
	case uuidID:
		return "uuid", nil
	}

	switch t.Kind {
	case TypeKindBasic:
		if b, ok := t.GoType.(*types.Basic); ok {
			switch info := b.Info(); {
			case info&types.IsBoolean != 0:
				return "bool", nil
			case info&types.IsInteger != 0:
				return "int", nil
			case info&types.IsFloat != 0:
				return "float", nil
			case info&types.IsString != 0:
				return "str", nil
			}
		}

	case TypeKindAlias, TypeKindExternal:
		if t.Underlying != nil {
			return e.typeExpr(path, t.Underlying)
		}

	case TypeKindPointer:
		return e.typeExpr(path, t.ElemType)

	case TypeKindSlice, TypeKindArray:
		if t.Kind == TypeKindSlice && isByte(t.ElemType) {
			return "bytes", nil
		}

		elem, err := e.typeExpr(path.Slice(), t.ElemType)
		if err != nil {
			return "", err
		}

		return "list[" + elem + "]", nil

	case TypeKindMap:
		key, err := e.typeExpr(path, t.KeyType)
		if err != nil {
			return "", err
		}

		value, err := e.typeExpr(path.Map(), t.ElemType)
		if err != nil {
			return "", err
		}

		return "dict[" + key + ", " + value + "]", nil

	case TypeKindStruct:
		if t.IsNamed() {
			return e.enqueue(t)
		}
	}

	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, path, t.GoType)
}

func isByte(t *TypeInfo) bool {
	b, ok := t.GoType.(*types.Basic)
	return ok && b.Kind() == types.Byte
}
