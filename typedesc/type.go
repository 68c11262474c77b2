package typedesc

import (
	"errors"
	"fmt"
)

// ErrArity is wrapped by Constructor implementations when the supplied
// values do not match the record's fields by count or name.
var ErrArity = errors.New("arguments do not match record fields")

type ContainerEnum int

const (
	ContainerUnknown ContainerEnum = iota
	ContainerList
	ContainerTuple
	ContainerSet
	ContainerFrozenSet
	ContainerDict
)

// String returns the name used for the container in type expressions.
func (c ContainerEnum) String() string {
	switch c {
	case ContainerList:
		return "list"
	case ContainerTuple:
		return "tuple"
	case ContainerSet:
		return "set"
	case ContainerFrozenSet:
		return "frozenset"
	case ContainerDict:
		return "dict"
	default:
		return fmt.Sprintf("ContainerEnum(%d)", int(c))
	}
}

// IsSequence reports whether the container holds a single element type.
func (c ContainerEnum) IsSequence() bool {
	switch c {
	default:
		return false
	case ContainerList, ContainerTuple, ContainerSet, ContainerFrozenSet:
		return true
	}
}

// Type is a declared field type. The set of implementations is closed:
// Primitive, Sequence, Mapping, Record, Placeholder and Generic.
//
// Every implementation is comparable so descriptors can key override tables.
type Type interface {
	fmt.Stringer
	isType()
}

// Primitive is a scalar type constructed directly from a single value.
type Primitive struct {
	Kind KindEnum
}

// Sequence is a parametrized list, tuple, set or frozenset.
type Sequence struct {
	Container ContainerEnum
	Elem      Type
}

// Mapping is a parametrized dict.
type Mapping struct {
	Key, Value Type
}

// Record is a nested record type built through its Constructor.
type Record struct {
	Ref Constructor
}

// Placeholder is an unbound type variable. Casting to a container
// parametrized with a placeholder is always rejected.
type Placeholder struct {
	Name string
}

// Generic is a container without type arguments, e.g. a bare "list".
type Generic struct {
	Container ContainerEnum
}

func (Primitive) isType()   {}
func (Sequence) isType()    {}
func (Mapping) isType()     {}
func (Record) isType()      {}
func (Placeholder) isType() {}
func (Generic) isType()     {}

func (p Primitive) String() string {
	switch p.Kind {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "str"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindDuration:
		return "duration"
	case KindTime:
		return "time"
	case KindUUID:
		return "uuid"
	default:
		return p.Kind.String()
	}
}

func (s Sequence) String() string {
	return fmt.Sprintf("%s[%s]", s.Container, typeName(s.Elem))
}

func (m Mapping) String() string {
	return fmt.Sprintf("dict[%s, %s]", typeName(m.Key), typeName(m.Value))
}

func (r Record) String() string {
	if r.Ref == nil {
		return "record(<nil>)"
	}

	return r.Ref.Name()
}

func (p Placeholder) String() string { return "~" + p.Name }

func (g Generic) String() string { return g.Container.String() }

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// Constructor builds record instances for a Record descriptor.
type Constructor interface {
	// Name is the record type name used in messages.
	Name() string
	// IsInstance reports whether v is already an instance of this record type.
	IsInstance(v any) bool
	// FromMap builds an instance by binding values by field name.
	FromMap(values map[string]any) (any, error)
	// FromSlice builds an instance by binding values positionally.
	FromSlice(values []any) (any, error)
	// FromValue builds an instance from a single positional value.
	FromValue(value any) (any, error)
}

var (
	Int      Type = Primitive{Kind: KindInt}
	Float    Type = Primitive{Kind: KindFloat}
	String   Type = Primitive{Kind: KindString}
	Bool     Type = Primitive{Kind: KindBool}
	Bytes    Type = Primitive{Kind: KindBytes}
	Duration Type = Primitive{Kind: KindDuration}
	Time     Type = Primitive{Kind: KindTime}
	UUID     Type = Primitive{Kind: KindUUID}
)

func ListOf(elem Type) Type      { return Sequence{Container: ContainerList, Elem: elem} }
func TupleOf(elem Type) Type     { return Sequence{Container: ContainerTuple, Elem: elem} }
func SetOf(elem Type) Type       { return Sequence{Container: ContainerSet, Elem: elem} }
func FrozenSetOf(elem Type) Type { return Sequence{Container: ContainerFrozenSet, Elem: elem} }
func DictOf(key, value Type) Type {
	return Mapping{Key: key, Value: value}
}

func RecordOf(c Constructor) Type { return Record{Ref: c} }
func TypeVar(name string) Type    { return Placeholder{Name: name} }
func Bare(c ContainerEnum) Type   { return Generic{Container: c} }

// Conforms reports whether v already has exactly the type t, so casting it
// would be the identity. Containers never conform: their elements are not
// tracked by the runtime type and are always rebuilt.
func Conforms(v any, t Type) bool {
	switch t := t.(type) {
	case Primitive:
		return v != nil && KindOf(v) == t.Kind
	case Record:
		return v != nil && t.Ref != nil && t.Ref.IsInstance(v)
	default:
		return false
	}
}
