package analyze

import (
	"go/types"
	"reflect"
	"slices"
	"strings"
	"unicode"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "recordcast/internal/analyze/testdata/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown  TypeKind = iota
	TypeKindBasic             // int, string, bool, etc.
	TypeKindStruct            // struct type
	TypeKindPointer           // pointer to another type
	TypeKindSlice             // slice of another type
	TypeKindArray             // array of another type
	TypeKindMap               // map from KeyType to ElemType
	TypeKindAlias             // named type wrapping another
	TypeKindExternal          // external/opaque type (e.g., uuid.UUID)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindArray:
		return "array"
	case TypeKindMap:
		return "map"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID         TypeID      // Unique identifier (empty for unnamed types like *T or []T)
	Kind       TypeKind    // Kind of type
	Underlying *TypeInfo   // For named types, the underlying type
	ElemType   *TypeInfo   // For pointers, slices, arrays and maps, the element type
	KeyType    *TypeInfo   // For maps, the key type
	Fields     []FieldInfo // For structs, the list of fields
	GoType     types.Type  // The original go/types.Type
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// FieldInfo describes an exported struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Type     *TypeInfo         // Field type
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
}

// TagKey is the struct tag read for field options.
const TagKey = "recordcast"

// FieldTag holds the options parsed from a recordcast struct tag.
type FieldTag struct {
	Name       string
	Skip       bool
	Nullable   bool
	SkipCast   bool
	IgnoreEnv  bool
	Env        string
	Default    string
	HasDefault bool
}

// Options parses the recordcast tag. Options after the name are
// nullable, skip_cast, ignore_env, env=NAME and default=VALUE.
func (f *FieldInfo) Options() FieldTag {
	var opts FieldTag

	tag, ok := f.Tag.Lookup(TagKey)
	if !ok {
		return opts
	}

	if tag == "-" {
		opts.Skip = true
		return opts
	}

	parts := strings.Split(tag, ",")
	opts.Name = parts[0]

	for _, p := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(p), "=")

		switch key {
		case "nullable":
			opts.Nullable = true
		case "skip_cast":
			opts.SkipCast = true
		case "ignore_env":
			opts.IgnoreEnv = true
		case "env":
			opts.Env = value
		case "default":
			opts.Default = value
			opts.HasDefault = true
		}
	}

	return opts
}

// JSONName returns the JSON tag name if present, otherwise the field name.
func (f *FieldInfo) JSONName() string {
	if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return name
		}
	}

	return f.Name
}

// RecordName returns the field name used in the schema: the recordcast tag
// name, then the json tag name, then the snake_case Go name.
func (f *FieldInfo) RecordName() string {
	if name := f.Options().Name; name != "" {
		return name
	}

	if name := f.JSONName(); name != f.Name {
		return name
	}

	return SnakeCase(f.Name)
}

// SnakeCase converts a Go identifier to snake_case, keeping acronyms
// together: "CustomerID" becomes "customer_id", "HTTPPort" "http_port".
func SnakeCase(name string) string {
	runes := []rune(name)

	var sb strings.Builder

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte('_')
			}
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Find returns the IDs of the loaded types called name.
func (g *TypeGraph) Find(name string) []TypeID {
	var out []TypeID

	for _, pkg := range g.sortedPackages() {
		for _, id := range pkg.Types {
			if id.Name == name {
				out = append(out, id)
			}
		}
	}

	return out
}

// Structs returns the IDs of every loaded struct type, by package then name.
func (g *TypeGraph) Structs() []TypeID {
	var out []TypeID

	for _, pkg := range g.sortedPackages() {
		for _, id := range pkg.Types {
			if g.Types[id].Kind == TypeKindStruct {
				out = append(out, id)
			}
		}
	}

	return out
}

func (g *TypeGraph) sortedPackages() []*PackageInfo {
	out := make([]*PackageInfo, 0, len(g.Packages))
	for _, pkg := range g.Packages {
		out = append(out, pkg)
	}

	slices.SortFunc(out, func(a, b *PackageInfo) int { return strings.Compare(a.Path, b.Path) })

	return out
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Named types defined in this package, sorted by name
}
