package cast

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"recordcast/typedesc"
)

// construct builds a primitive of the given kind from a single value,
// the equivalent of calling the type's constructor with one argument.
func construct(value any, kind typedesc.KindEnum) (any, error) {
	switch kind {
	case typedesc.KindInt:
		return toInt(value)
	case typedesc.KindFloat:
		return toFloat(value)
	case typedesc.KindString:
		return toString(value)
	case typedesc.KindBool:
		return toBool(value)
	case typedesc.KindBytes:
		return toBytes(value)
	case typedesc.KindDuration:
		return toDuration(value)
	case typedesc.KindTime:
		return toTime(value)
	case typedesc.KindUUID:
		return toUUID(value)
	default:
		return nil, fmt.Errorf("%w: unknown primitive kind %s", ErrType, kind)
	}
}

func convertErr(value any, to string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w to %s: %w", ErrConvert, to, cause)
	}

	return fmt.Errorf("%w of type %T to %s", ErrConvert, value, to)
}

// number classifies v as an integer or a float, following named types to
// their underlying kind. json.Number is parsed as an integer when possible.
func number(v any) (i int64, f float64, isInt, ok bool) {
	if n, isNum := v.(json.Number); isNum {
		if i, err := n.Int64(); err == nil {
			return i, float64(i), true, true
		}

		if f, err := n.Float64(); err == nil {
			return 0, f, false, true
		}

		return 0, 0, false, false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), float64(rv.Int()), true, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, float64(u), false, true
		}

		return int64(u), float64(u), true, true
	case reflect.Float32, reflect.Float64:
		return 0, rv.Float(), false, true
	default:
		return 0, 0, false, false
	}
}

func toInt(v any) (any, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return 1, nil
		}

		return 0, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, strconv.IntSize)
		if err != nil {
			return nil, convertErr(v, "int", err)
		}

		return int(i), nil
	}

	i, f, isInt, ok := number(v)
	if !ok {
		return nil, convertErr(v, "int", nil)
	}

	if isInt {
		if i > math.MaxInt || i < math.MinInt {
			return nil, convertErr(v, "int", strconv.ErrRange)
		}

		return int(i), nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt || f < math.MinInt {
		return nil, convertErr(v, "int", strconv.ErrRange)
	}

	// truncates toward zero
	return int(f), nil
}

func toFloat(v any) (any, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return 1.0, nil
		}

		return 0.0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, convertErr(v, "float", err)
		}

		return f, nil
	}

	_, f, _, ok := number(v)
	if !ok {
		return nil, convertErr(v, "float", nil)
	}

	return f, nil
}

func toString(v any) (any, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	i, f, isInt, ok := number(v)
	if ok {
		if isInt {
			return strconv.FormatInt(i, 10), nil
		}

		return strconv.FormatFloat(f, 'g', -1, 64), nil
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String(), nil
	}

	return nil, convertErr(v, "str", nil)
}

// textual booleans: yes, no, on, off, true, false and their short forms
var textualBools = map[string]bool{
	"1": true, "t": true, "true": true, "y": true, "yes": true, "on": true,
	"0": false, "f": false, "false": false, "n": false, "no": false, "off": false,
}

func toBool(v any) (any, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		b, ok := textualBools[strings.ToLower(strings.TrimSpace(v))]
		if !ok {
			return nil, convertErr(v, "bool", fmt.Errorf("unrecognized boolean %q", v))
		}

		return b, nil
	}

	if _, f, _, ok := number(v); ok {
		return f != 0, nil
	}

	if v == nil {
		return nil, convertErr(v, "bool", nil)
	}

	// collections are true when non-empty
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0, nil
	default:
		return nil, convertErr(v, "bool", nil)
	}
}

func toBytes(v any) (any, error) {
	switch v := v.(type) {
	case string:
		return []byte(v), nil
	case uuid.UUID:
		return v[:], nil
	}

	return nil, convertErr(v, "bytes", nil)
}

// toDuration accepts "2h45m" text, integer nanoseconds and float seconds.
// Numeric text without a unit is read as seconds.
func toDuration(v any) (any, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)

		d, err := time.ParseDuration(s)
		if err == nil {
			return d, nil
		}

		secs, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil, convertErr(v, "duration", err)
		}

		return secondsToDuration(v, secs)
	}

	i, f, isInt, ok := number(v)
	if !ok {
		return nil, convertErr(v, "duration", nil)
	}

	if isInt {
		return time.Duration(i), nil
	}

	return secondsToDuration(v, f)
}

func secondsToDuration(v any, secs float64) (any, error) {
	ns := secs * float64(time.Second)
	if math.IsNaN(ns) || math.IsInf(ns, 0) || ns >= math.MaxInt64 || ns < math.MinInt64 {
		return nil, convertErr(v, "duration", strconv.ErrRange)
	}

	return time.Duration(ns), nil
}

// toTime accepts RFC3339Nano text and integer Unix seconds.
func toTime(v any) (any, error) {
	if s, ok := v.(string); ok {
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
		if err != nil {
			return nil, convertErr(v, "time", err)
		}

		return t, nil
	}

	i, _, isInt, ok := number(v)
	if !ok || !isInt {
		return nil, convertErr(v, "time", nil)
	}

	return time.Unix(i, 0).UTC(), nil
}

func toUUID(v any) (any, error) {
	switch v := v.(type) {
	case string:
		u, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return nil, convertErr(v, "uuid", err)
		}

		return u, nil
	case []byte:
		u, err := uuid.FromBytes(v)
		if err != nil {
			return nil, convertErr(v, "uuid", err)
		}

		return u, nil
	case [16]byte:
		return uuid.UUID(v), nil
	}

	return nil, convertErr(v, "uuid", nil)
}
