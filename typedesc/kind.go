package typedesc

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindFloat
	KindString
	KindBool
	KindBytes
	KindDuration
	KindTime
	KindUUID

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

var (
	typeInt      = reflect.TypeOf(int(0))
	typeFloat    = reflect.TypeOf(float64(0))
	typeString   = reflect.TypeOf("")
	typeBool     = reflect.TypeOf(false)
	typeBytes    = reflect.TypeOf([]byte(nil))
	typeDuration = reflect.TypeOf(time.Duration(0))
	typeTime     = reflect.TypeOf(time.Time{})
	typeUUID     = reflect.TypeOf(uuid.UUID{})
)

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt, KindFloat:
		return true
	}
}

// IsTextual reports whether values of the kind have a canonical text form
// that parses back into the same value.
func (k KindEnum) IsTextual() bool {
	switch k {
	default:
		return false
	case KindString, KindBytes, KindDuration, KindTime, KindUUID:
		return true
	}
}

// GoType returns the runtime representation of the kind.
func (k KindEnum) GoType() reflect.Type {
	switch k {
	default:
		panic("no runtime type for invalid kind: " + k.String())
	case KindInt:
		return typeInt
	case KindFloat:
		return typeFloat
	case KindString:
		return typeString
	case KindBool:
		return typeBool
	case KindBytes:
		return typeBytes
	case KindDuration:
		return typeDuration
	case KindTime:
		return typeTime
	case KindUUID:
		return typeUUID
	}
}

// KindOf returns the primitive kind whose runtime representation is exactly
// the type of v, or zero if v is not a primitive value.
func KindOf(v any) KindEnum {
	switch v.(type) {
	case int:
		return KindInt
	case float64:
		return KindFloat
	case string:
		return KindString
	case bool:
		return KindBool
	case []byte:
		return KindBytes
	case time.Duration:
		return KindDuration
	case time.Time:
		return KindTime
	case uuid.UUID:
		return KindUUID
	}

	return 0
}
