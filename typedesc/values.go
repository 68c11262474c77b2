package typedesc

import (
	"fmt"
	"reflect"
	"sort"
)

// List is the runtime value of a list[T] field.
type List []any

// Tuple is the runtime value of a tuple[T] field.
type Tuple []any

// Set is the runtime value of a set[T] field. Elements must be comparable.
type Set map[any]struct{}

// FrozenSet is the runtime value of a frozenset[T] field.
// It has no mutating methods.
type FrozenSet map[any]struct{}

// Dict is the runtime value of a dict[K, V] field. Keys must be comparable.
type Dict map[any]any

func NewSet(items ...any) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}

	return s
}

func NewFrozenSet(items ...any) FrozenSet {
	s := make(FrozenSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}

	return s
}

func (s Set) Add(v any) { s[v] = struct{}{} }

func (s Set) Has(v any) bool {
	_, ok := s[v]
	return ok
}

func (s FrozenSet) Has(v any) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the elements ordered by their printed form.
func (s Set) Sorted() []any { return sortedKeys(s) }

// Sorted returns the elements ordered by their printed form.
func (s FrozenSet) Sorted() []any { return sortedKeys(s) }

// SortedKeys returns the keys ordered by their printed form.
func (d Dict) SortedKeys() []any {
	keys := make([]any, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}

	sortByText(keys)

	return keys
}

func sortedKeys[M ~map[any]struct{}](m M) []any {
	out := make([]any, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	sortByText(out)

	return out
}

func sortByText(items []any) {
	sort.SliceStable(items, func(i, j int) bool {
		return fmt.Sprint(items[i]) < fmt.Sprint(items[j])
	})
}

// IsComparable reports whether v can be used as a Set element or Dict key.
func IsComparable(v any) bool {
	if v == nil {
		return true
	}

	return reflect.ValueOf(v).Comparable()
}
