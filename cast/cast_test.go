package cast

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordcast/typedesc"
)

func TestCast_Primitives(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		target typedesc.Type
		want   any
	}{
		{"str to int", "1", typedesc.Int, 1},
		{"float to int", 1.1, typedesc.Int, 1},
		{"negative float to int", -1.9, typedesc.Int, -1},
		{"bool to int", true, typedesc.Int, 1},
		{"json number to int", json.Number("42"), typedesc.Int, 42},
		{"int64 to int", int64(7), typedesc.Int, 7},
		{"int to str", 1, typedesc.String, "1"},
		{"float to str", 1.1, typedesc.String, "1.1"},
		{"bytes to str", []byte("ab"), typedesc.String, "ab"},
		{"empty list to bool", []any{}, typedesc.Bool, false},
		{"int to bool", 1, typedesc.Bool, true},
		{"textual bool", "Yes", typedesc.Bool, true},
		{"textual false", "off", typedesc.Bool, false},
		{"int to float", 1, typedesc.Float, 1.0},
		{"str to float", "1.22", typedesc.Float, 1.22},
		{"str to bytes", "ab", typedesc.Bytes, []byte("ab")},
		{"text duration", "2h45m", typedesc.Duration, 2*time.Hour + 45*time.Minute},
		{"unitless duration", "30", typedesc.Duration, 30 * time.Second},
		{"nanosecond duration", 1500, typedesc.Duration, 1500 * time.Nanosecond},
		{"float seconds duration", 1.5, typedesc.Duration, 1500 * time.Millisecond},
		{"duration to str", 90 * time.Second, typedesc.String, "1m30s"},
		{"unix time", 0, typedesc.Time, time.Unix(0, 0).UTC()},
		{"rfc3339 time", "2024-01-02T03:04:05Z", typedesc.Time, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"uuid text", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", typedesc.UUID,
			uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cast(tt.value, tt.target, nil)
			require.NoError(t, err)

			if !assert.Equal(t, tt.want, got) {
				t.Log(spew.Sdump(got))
			}

			assert.Equal(t, tt.target.(typedesc.Primitive).Kind, typedesc.KindOf(got))
		})
	}
}

func TestCast_IdentityFastPath(t *testing.T) {
	b := []byte("x")

	got, err := Cast(b, typedesc.Bytes, Overrides{
		typedesc.Bytes: func(any) (any, error) { return nil, errors.New("must not be called") },
	})
	require.NoError(t, err)
	assert.Same(t, &b[0], &got.([]byte)[0])
}

func TestCast_PrimitiveFailures(t *testing.T) {
	tests := []struct {
		value  any
		target typedesc.Type
	}{
		{"abc", typedesc.Int},
		{"1.5", typedesc.Int},
		{"maybe", typedesc.Bool},
		{nil, typedesc.Int},
		{struct{}{}, typedesc.Float},
		{"soon", typedesc.Duration},
		{"yesterday", typedesc.Time},
		{"not-a-uuid", typedesc.UUID},
		{1.5, typedesc.Time},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v to %s", tt.value, tt.target), func(t *testing.T) {
			_, err := Cast(tt.value, tt.target, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConvert)
			assert.ErrorIs(t, err, ErrType)

			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.target, ce.Target)
		})
	}
}

func TestCast_BareContainersFromString(t *testing.T) {
	got, err := Cast("1234", typedesc.ListOf(typedesc.String), nil)
	require.NoError(t, err)
	assert.Equal(t, typedesc.List{"1", "2", "3", "4"}, got)

	got, err = Cast("1234", typedesc.TupleOf(typedesc.String), nil)
	require.NoError(t, err)
	assert.Equal(t, typedesc.Tuple{"1", "2", "3", "4"}, got)

	got, err = Cast("1234", typedesc.SetOf(typedesc.String), nil)
	require.NoError(t, err)
	assert.Equal(t, typedesc.NewSet("1", "2", "3", "4"), got)

	got, err = Cast("1234", typedesc.FrozenSetOf(typedesc.String), nil)
	require.NoError(t, err)
	assert.Equal(t, typedesc.NewFrozenSet("1", "2", "3", "4"), got)
}

func TestCast_Sequences(t *testing.T) {
	tests := []struct {
		name   string
		target typedesc.Type
		want   any
	}{
		{"list", typedesc.ListOf(typedesc.Int), typedesc.List{1, 2, 3, 4}},
		{"tuple", typedesc.TupleOf(typedesc.Int), typedesc.Tuple{1, 2, 3, 4}},
		{"set", typedesc.SetOf(typedesc.Int), typedesc.NewSet(1, 2, 3, 4)},
		{"frozenset", typedesc.FrozenSetOf(typedesc.Int), typedesc.NewFrozenSet(1, 2, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cast("1234", tt.target, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			items, ok := iterate(got)
			require.True(t, ok)

			for _, it := range items {
				assert.IsType(t, 0, it)
			}
		})
	}
}

func TestCast_SequenceFromGoSlices(t *testing.T) {
	got, err := Cast([]string{"1", "2"}, typedesc.ListOf(typedesc.Float), nil)
	require.NoError(t, err)
	assert.Equal(t, typedesc.List{1.0, 2.0}, got)

	got, err = Cast([2]int{3, 4}, typedesc.TupleOf(typedesc.String), nil)
	require.NoError(t, err)
	assert.Equal(t, typedesc.Tuple{"3", "4"}, got)

	got, err = Cast(typedesc.NewSet("b", "a"), typedesc.ListOf(typedesc.String), nil)
	require.NoError(t, err)
	assert.Equal(t, typedesc.List{"a", "b"}, got)
}

func TestCast_Mappings(t *testing.T) {
	got, err := Cast(map[string]any{"1": "0.2"}, typedesc.DictOf(typedesc.Int, typedesc.Float), nil)
	require.NoError(t, err)
	assert.Equal(t, typedesc.Dict{1: 0.2}, got)

	got, err = Cast(typedesc.Dict{"a": []any{"1", 2.5}}, typedesc.DictOf(typedesc.String, typedesc.ListOf(typedesc.Int)), nil)
	require.NoError(t, err)
	assert.Equal(t, typedesc.Dict{"a": typedesc.List{1, 2}}, got)
}

func TestCast_ForbiddenTargets(t *testing.T) {
	T := typedesc.TypeVar("T")

	tests := []struct {
		name   string
		value  any
		target typedesc.Type
		want   error
	}{
		{"bare list", "1", typedesc.Bare(typedesc.ContainerList), ErrGenericTarget},
		{"bare dict", map[string]any{}, typedesc.Bare(typedesc.ContainerDict), ErrGenericTarget},
		{"list of typevar", "1", typedesc.ListOf(T), ErrPlaceholderTarget},
		{"empty list of typevar", []any{}, typedesc.ListOf(T), ErrPlaceholderTarget},
		{"non-iterable list of typevar", 0.25, typedesc.ListOf(T), ErrPlaceholderTarget},
		{"dict with typevar keys", map[string]any{"1": "2"}, typedesc.DictOf(T, typedesc.Float), ErrPlaceholderTarget},
		{"dict with typevar values", map[string]any{"1": "2"}, typedesc.DictOf(typedesc.Int, T), ErrPlaceholderTarget},
		{"nested typevar", []any{}, typedesc.ListOf(typedesc.ListOf(T)), ErrPlaceholderTarget},
		{"nested bare", []any{}, typedesc.DictOf(typedesc.String, typedesc.Bare(typedesc.ContainerSet)), ErrGenericTarget},
		{"sequence with dict container", []any{}, typedesc.Sequence{Container: typedesc.ContainerDict, Elem: typedesc.Int}, ErrGenericTarget},
		{"nil target", 1, nil, ErrNilTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Cast(tt.value, tt.target, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrType)
			assert.NotErrorIs(t, err, ErrValue)
		})
	}
}

func TestCast_ValueErrors(t *testing.T) {
	_, err := Cast(0.25, typedesc.ListOf(typedesc.Int), nil)
	assert.ErrorIs(t, err, ErrNotIterable)
	assert.ErrorIs(t, err, ErrValue)

	_, err = Cast("1", typedesc.DictOf(typedesc.Int, typedesc.Float), nil)
	assert.ErrorIs(t, err, ErrNotMapping)
	assert.ErrorIs(t, err, ErrValue)

	_, err = Cast([]any{[]any{1}}, typedesc.SetOf(typedesc.ListOf(typedesc.Int)), nil)
	assert.ErrorIs(t, err, ErrUnhashable)
}

// point is a record constructor whose instances are pointers.
type point struct{}

type pointValue struct{ x any }

func (point) Name() string                          { return "Point" }
func (point) FromMap(m map[string]any) (any, error) { return &pointValue{x: m["x"]}, nil }
func (point) FromSlice(items []any) (any, error)    { return &pointValue{x: items[0]}, nil }
func (point) FromValue(v any) (any, error)          { return &pointValue{x: v}, nil }

func (point) IsInstance(v any) bool {
	_, ok := v.(*pointValue)
	return ok
}

func TestCast_RecordsAreUnhashable(t *testing.T) {
	pt := typedesc.RecordOf(point{})

	for _, target := range []typedesc.Type{typedesc.SetOf(pt), typedesc.FrozenSetOf(pt)} {
		_, err := Cast([]any{[]any{1}, []any{1}}, target, nil)
		assert.ErrorIs(t, err, ErrUnhashable, target.String())
		assert.ErrorIs(t, err, ErrValue)
	}

	_, err := Cast(map[any]any{1: "a"}, typedesc.DictOf(pt, typedesc.String), nil)
	assert.ErrorIs(t, err, ErrUnhashable)

	// records stay fine as list elements and dict values
	out, err := Cast([]any{1, 1}, typedesc.ListOf(pt), nil)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = Cast(map[string]any{"a": 1}, typedesc.DictOf(typedesc.String, pt), nil)
	require.NoError(t, err)

	empty, err := Cast([]any{}, typedesc.SetOf(pt), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCast_NestedErrorPath(t *testing.T) {
	_, err := Cast(map[string]any{"a": []any{"1", "x"}}, typedesc.DictOf(typedesc.String, typedesc.ListOf(typedesc.Int)), nil)
	require.Error(t, err)

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "[a][1]", ce.Path)
	assert.Equal(t, "x", ce.Value)
	assert.Contains(t, err.Error(), "at [a][1]")
}

func TestCast_OverridesApplyRecursively(t *testing.T) {
	calls := 0
	square := func(v any) (any, error) {
		calls++

		i, err := Cast(v, typedesc.Int, nil)
		if err != nil {
			return nil, err
		}

		return i.(int) * i.(int), nil
	}

	overrides := Overrides{typedesc.Int: square}

	got, err := Cast([]any{"11", 2.22, false}, typedesc.ListOf(typedesc.Int), overrides)
	require.NoError(t, err)
	assert.Equal(t, typedesc.List{121, 4, 0}, got)
	assert.Equal(t, 3, calls)

	got, err = Cast(map[string]any{"a": "3"}, typedesc.DictOf(typedesc.String, typedesc.Int), overrides)
	require.NoError(t, err)
	assert.Equal(t, typedesc.Dict{"a": 9}, got)

	// values that already have the target type bypass the override
	got, err = Cast(5, typedesc.Int, overrides)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestCast_OverrideError(t *testing.T) {
	boom := errors.New("boom")

	_, err := Cast([]any{"1"}, typedesc.ListOf(typedesc.Int), Overrides{
		typedesc.Int: func(any) (any, error) { return nil, boom },
	})
	assert.ErrorIs(t, err, boom)
}
