package record

import (
	"errors"
	"fmt"
	"reflect"

	"recordcast/cast"
	"recordcast/typedesc"
)

var (
	ErrNotAHandler    = errors.New("provided function is not a recognizable handler")
	ErrHandlerNotFunc = errors.New("provided handler is not a function")
)

var (
	instanceType = reflect.TypeOf((*Instance)(nil))
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// AdaptHandler turns a plain function into a Handler.
//
// Supports signatures:
//   - func(v V) R
//   - func(v V) (R, error)
//   - func(inst *Instance, v V) R
//   - func(inst *Instance, v V) (R, error)
//
// When the incoming value is not assignable to V and V is the runtime type
// of a primitive kind, the value is cast to that kind first.
func AdaptHandler(fn any) (Handler, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return nil, ErrHandlerNotFunc
	}

	fnType := fnVal.Type()
	if fnType.IsVariadic() {
		return nil, ErrNotAHandler
	}

	withInstance := false

	switch fnType.NumIn() {
	default:
		return nil, ErrNotAHandler
	case 1:
	case 2:
		if fnType.In(0) != instanceType {
			return nil, ErrNotAHandler
		}

		withInstance = true
	}

	switch fnType.NumOut() {
	default:
		return nil, ErrNotAHandler
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, ErrNotAHandler
		}
	}

	valueType := fnType.In(fnType.NumIn() - 1)
	kind := primitiveKindOf(valueType)

	return func(inst *Instance, value any) (any, error) {
		arg, err := argument(value, valueType, kind)
		if err != nil {
			return nil, err
		}

		in := []reflect.Value{arg}
		if withInstance {
			in = []reflect.Value{reflect.ValueOf(inst), arg}
		}

		out := fnVal.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}

		return out[0].Interface(), nil
	}, nil
}

// MustAdaptHandler is like AdaptHandler but panics on error.
func MustAdaptHandler(fn any) Handler {
	h, err := AdaptHandler(fn)
	if err != nil {
		panic(err)
	}

	return h
}

func primitiveKindOf(t reflect.Type) typedesc.KindEnum {
	for k := typedesc.KindEnum(1); int(k) < typedesc.KindTotal; k++ {
		if k.GoType() == t {
			return k
		}
	}

	return 0
}

func argument(value any, want reflect.Type, kind typedesc.KindEnum) (reflect.Value, error) {
	if value == nil {
		switch want.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
	} else if rv := reflect.ValueOf(value); rv.Type().AssignableTo(want) {
		return rv, nil
	}

	if kind == 0 {
		return reflect.Value{}, fmt.Errorf("%w: handler expects %s, got %T", cast.ErrType, want, value)
	}

	cv, err := cast.Cast(value, typedesc.Primitive{Kind: kind}, nil)
	if err != nil {
		return reflect.Value{}, err
	}

	return reflect.ValueOf(cv), nil
}
