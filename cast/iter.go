package cast

import (
	"fmt"
	"reflect"
	"sort"

	"recordcast/typedesc"
)

type pair struct {
	key, value any
}

func isText(v any) bool {
	switch v.(type) {
	case string, []byte:
		return true
	}

	return false
}

// iterate returns the elements of v when v is iterable. Strings yield their
// characters, byte slices their bytes as ints, sets their elements and
// mappings their keys. Unordered collections are ordered by printed form so
// results are deterministic.
func iterate(v any) ([]any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case string:
		out := make([]any, 0, len(v))
		for _, r := range v {
			out = append(out, string(r))
		}

		return out, true
	case []byte:
		out := make([]any, len(v))
		for i, b := range v {
			out[i] = int(b)
		}

		return out, true
	case typedesc.List:
		return append([]any(nil), v...), true
	case typedesc.Tuple:
		return append([]any(nil), v...), true
	case []any:
		return append([]any(nil), v...), true
	case typedesc.Set:
		return v.Sorted(), true
	case typedesc.FrozenSet:
		return v.Sorted(), true
	case typedesc.Dict:
		return v.SortedKeys(), true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}

		return out, true
	case reflect.Map:
		keys := rv.MapKeys()
		out := make([]any, len(keys))

		for i, k := range keys {
			out[i] = k.Interface()
		}

		sort.SliceStable(out, func(i, j int) bool {
			return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
		})

		return out, true
	default:
		return nil, false
	}
}

// entries returns the key/value pairs of v when v is a mapping.
func entries(v any) ([]pair, bool) {
	if v == nil {
		return nil, false
	}

	switch v.(type) {
	case typedesc.Set, typedesc.FrozenSet:
		return nil, false
	}

	if d, ok := v.(typedesc.Dict); ok {
		out := make([]pair, 0, len(d))
		for _, k := range d.SortedKeys() {
			out = append(out, pair{key: k, value: d[k]})
		}

		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}

	out := make([]pair, 0, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, pair{key: iter.Key().Interface(), value: iter.Value().Interface()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return fmt.Sprint(out[i].key) < fmt.Sprint(out[j].key)
	})

	return out, true
}
