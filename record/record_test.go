package record_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordcast/cast"
	"recordcast/record"
	"recordcast/typedesc"
)

func constant(v any) record.Handler {
	return func(*record.Instance, any) (any, error) { return v, nil }
}

func TestHandlerPrecedence(t *testing.T) {
	s := record.NewBuilder("Precedence").
		Field(
			record.NewField("a", typedesc.Int),
			record.NewField("b", typedesc.Int),
			record.NewField("c", typedesc.String),
		).
		FieldHandler("a", constant("field")).
		TypeHandler(typedesc.Int, constant("type")).
		MustFinalize()

	inst, err := s.New(1, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, "field", inst.MustGet("a"))
	assert.Equal(t, "type", inst.MustGet("b"))
	assert.Equal(t, "3", inst.MustGet("c"))
}

func TestTypeHandlerReachesNestedElements(t *testing.T) {
	s := record.NewBuilder("Scaled").
		Field(
			record.NewField("xs", typedesc.ListOf(typedesc.Int)),
			record.NewField("m", typedesc.DictOf(typedesc.String, typedesc.Int)),
		).
		TypeHandler(typedesc.Int, record.MustAdaptHandler(func(v int) int { return v * 10 })).
		MustFinalize()

	inst, err := s.New([]string{"1", "2"}, map[string]any{"k": "3"})
	require.NoError(t, err)

	assert.Equal(t, typedesc.List{10, 20}, inst.MustGet("xs"))
	assert.Equal(t, typedesc.Dict{"k": 30}, inst.MustGet("m"))
}

func TestSkipCastKeepsValue(t *testing.T) {
	s := record.NewBuilder("Raw").
		Field(
			record.NoncastedField("raw", typedesc.ListOf(typedesc.Int)),
			record.NoncastedField("n", typedesc.Int),
		).
		FieldHandler("raw", func(*record.Instance, any) (any, error) { return nil, errors.New("must not run") }).
		TypeHandler(typedesc.Int, func(*record.Instance, any) (any, error) { return nil, errors.New("must not run") }).
		MustFinalize()

	raw := []string{"x"}

	inst, err := s.New(raw, "not a number")
	require.NoError(t, err)

	got := inst.MustGet("raw")
	require.IsType(t, []string{}, got)
	assert.Same(t, &raw[0], &got.([]string)[0])
	assert.Equal(t, "not a number", inst.MustGet("n"))
}

func TestDependencyOrder(t *testing.T) {
	deps := map[string][]string{
		"a": {"b", "d", "f"},
		"b": {"c"},
		"c": {"d"},
		"d": nil,
		"e": {"d"},
		"f": {"b", "c", "e"},
	}

	var executed []string

	b := record.NewBuilder("Graph")

	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		b.Field(record.NewField(name, typedesc.Int, record.WithDefault(0), record.DependsOn(deps[name]...)))
		b.FieldHandler(name, func(_ *record.Instance, v any) (any, error) {
			executed = append(executed, name)
			return v, nil
		})
	}

	s, err := b.Finalize()
	require.NoError(t, err)

	want := []string{"d", "c", "e", "b", "f", "a"}
	assert.Equal(t, want, s.Order())
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, s.FieldNames())

	_, err = s.New()
	require.NoError(t, err)
	assert.Equal(t, want, executed)

	pos := make(map[string]int, len(executed))
	for i, name := range executed {
		pos[name] = i
	}

	for name, ds := range deps {
		for _, d := range ds {
			assert.Less(t, pos[d], pos[name], "%s must run after %s", name, d)
		}
	}
}

func TestOrderWithoutDependencies(t *testing.T) {
	s := record.NewBuilder("Plain").
		Field(
			record.NewField("z", typedesc.Int),
			record.NewField("a", typedesc.Int),
			record.NewField("m", typedesc.Int),
		).
		MustFinalize()

	assert.Equal(t, []string{"z", "a", "m"}, s.Order())
}

func TestCalculatedFields(t *testing.T) {
	s := record.NewBuilder("Powers").
		Field(
			record.NewField("n", typedesc.Int),
			record.CalculatedField("n_cube", typedesc.Int, []string{"n", "n_square"}),
			record.CalculatedField("n_square", typedesc.Int, []string{"n"}),
		).
		FieldHandler("n_square", func(inst *record.Instance, _ any) (any, error) {
			n := inst.MustGet("n").(int)
			return n * n, nil
		}).
		FieldHandler("n_cube", func(inst *record.Instance, _ any) (any, error) {
			return inst.MustGet("n").(int) * inst.MustGet("n_square").(int), nil
		}).
		MustFinalize()

	assert.Equal(t, []string{"n", "n_square", "n_cube"}, s.Order())

	inst, err := s.New("3")
	require.NoError(t, err)

	assert.Equal(t, 3, inst.MustGet("n"))
	assert.Equal(t, 9, inst.MustGet("n_square"))
	assert.Equal(t, 27, inst.MustGet("n_cube"))

	f, ok := s.Field("n_square")
	require.True(t, ok)
	assert.True(t, f.Has(record.FlagCalculated))
	assert.True(t, f.Has(record.FlagIgnoreEnv))

	replaced, err := inst.Replace(map[string]any{"n": 4})
	require.NoError(t, err)
	assert.Equal(t, 64, replaced.MustGet("n_cube"))
	assert.Equal(t, 27, inst.MustGet("n_cube"))
}

func TestFinalizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *record.Builder
		want    []error
	}{
		{
			name: "cycle",
			builder: record.NewBuilder("Cycle").
				Field(
					record.NewField("a", typedesc.Int, record.DependsOn("b")),
					record.NewField("b", typedesc.Int, record.DependsOn("a")),
				).
				FieldHandler("a", constant(1)).
				FieldHandler("b", constant(2)),
			want: []error{record.ErrDependencyCycle},
		},
		{
			name: "self cycle",
			builder: record.NewBuilder("Self").
				Field(record.NewField("a", typedesc.Int, record.DependsOn("a"))).
				FieldHandler("a", constant(1)),
			want: []error{record.ErrDependencyCycle},
		},
		{
			name: "missing field handler",
			builder: record.NewBuilder("Missing").
				Field(
					record.NewField("a", typedesc.Int),
					record.NewField("b", typedesc.Int, record.DependsOn("a")),
				).
				TypeHandler(typedesc.Int, constant(1)),
			want: []error{record.ErrMissingFieldHandler},
		},
		{
			name: "unknown dependency and duplicate field",
			builder: record.NewBuilder("Broken").
				Field(
					record.NewField("a", typedesc.Int, record.DependsOn("ghost")),
					record.NewField("a", typedesc.String),
				).
				FieldHandler("a", constant(1)),
			want: []error{record.ErrUnknownDependency, record.ErrDuplicateField},
		},
		{
			name:    "empty names and nil type",
			builder: record.NewBuilder("").Field(record.NewField("", typedesc.Int), record.NewField("x", nil)),
			want:    []error{record.ErrEmptyName, record.ErrNilType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.builder.Finalize()
			require.Error(t, err)
			assert.Nil(t, s)

			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestMissingHandlerNamesField(t *testing.T) {
	_, err := record.NewBuilder("Calc").
		Field(record.CalculatedField("total", typedesc.Int, nil), record.CalculatedField("avg", typedesc.Float, []string{"total"})).
		Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "avg")
	assert.Contains(t, err.Error(), "[Calc]")
}

func TestHandlerForUnknownFieldWarns(t *testing.T) {
	s := record.NewBuilder("Warn").
		Field(record.NewField("a", typedesc.Int)).
		FieldHandler("b", constant(1)).
		MustFinalize()

	require.Len(t, s.Warnings(), 1)
	assert.Contains(t, s.Warnings()[0], "handler_unknown_field")
}

func TestNullability(t *testing.T) {
	strict := record.NewBuilder("Strict").
		Field(record.NewField("x", typedesc.Int)).
		MustFinalize()

	_, err := strict.FromMap(map[string]any{"x": nil})
	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrNullValue)

	var fe *record.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Strict", fe.Schema)
	assert.Equal(t, "x", fe.Field)

	lenient := record.NewBuilder("Lenient").
		Field(record.NullableField("x", typedesc.Int)).
		MustFinalize()

	inst, err := lenient.FromMap(map[string]any{"x": nil})
	require.NoError(t, err)
	assert.Nil(t, inst.MustGet("x"))

	defaulted := record.NewBuilder("Defaulted").
		Field(record.NewField("x", typedesc.Int, record.WithDefault(nil))).
		MustFinalize()

	inst, err = defaulted.New()
	require.NoError(t, err)
	assert.Nil(t, inst.MustGet("x"))

	// the schema stays usable after a failed construction
	inst, err = strict.New("7")
	require.NoError(t, err)
	assert.Equal(t, 7, inst.MustGet("x"))
}

func TestConstructionBinding(t *testing.T) {
	s := record.NewBuilder("Point").
		Field(
			record.NewField("x", typedesc.Int),
			record.NewField("y", typedesc.Int, record.WithDefault(0)),
			record.NewField("tags", typedesc.ListOf(typedesc.String), record.WithDefaultFunc(func() any { return []any{} })),
		).
		MustFinalize()

	inst, err := s.Construct([]any{"1"}, map[string]any{"y": 2.5})
	require.NoError(t, err)
	assert.Equal(t, 1, inst.MustGet("x"))
	assert.Equal(t, 2, inst.MustGet("y"))
	assert.Equal(t, typedesc.List{}, inst.MustGet("tags"))
	assert.Equal(t, "Point(x=1, y=2, tags=[])", inst.String())

	tests := []struct {
		name  string
		args  []any
		named map[string]any
		want  error
	}{
		{"too many", []any{1, 2, 3, 4}, nil, record.ErrTooManyArguments},
		{"unknown", nil, map[string]any{"x": 1, "z": 1}, record.ErrUnknownField},
		{"duplicate", []any{1}, map[string]any{"x": 1}, record.ErrDuplicateArgument},
		{"missing", nil, nil, record.ErrMissingArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Construct(tt.args, tt.named)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, typedesc.ErrArity)
		})
	}
}

func TestHandlerErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")

	s := record.NewBuilder("Failing").
		Field(record.NewField("a", typedesc.Int)).
		FieldHandler("a", func(*record.Instance, any) (any, error) { return nil, boom }).
		MustFinalize()

	_, err := s.New(1)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "Failing.a: boom")
}

func nestedSchemas(t *testing.T) (endpoint, pair, service *record.Schema) {
	t.Helper()

	endpoint = record.NewBuilder("Endpoint").
		Field(
			record.NewField("host", typedesc.String),
			record.NewField("port", typedesc.Int, record.WithDefault(80)),
		).
		MustFinalize()

	pair = record.NewBuilder("Pair").
		Field(
			record.NewField("a", typedesc.Int),
			record.NewField("b", typedesc.Int),
		).
		MustFinalize()

	service = record.NewBuilder("Service").
		Field(
			record.NewField("name", typedesc.String),
			record.NewField("primary", endpoint.Type()),
			record.NewField("replicas", typedesc.ListOf(endpoint.Type())),
			record.NewField("tags", typedesc.SetOf(typedesc.String)),
			record.NewField("weights", typedesc.DictOf(typedesc.String, typedesc.Float)),
			record.NullableField("limits", typedesc.DictOf(typedesc.Int, typedesc.Int), record.WithDefault(nil)),
		).
		MustFinalize()

	return endpoint, pair, service
}

func newService(t *testing.T, service *record.Schema) *record.Instance {
	t.Helper()

	inst, err := service.FromMap(map[string]any{
		"name":     "api",
		"primary":  map[string]any{"host": "a.local", "port": "8080"},
		"replicas": []any{[]any{"b.local", 81}, "c.local"},
		"tags":     []string{"x", "y", "x"},
		"weights":  map[string]any{"b": 1, "a": 0.5},
		"limits":   map[string]any{"1": "10"},
	})
	require.NoError(t, err)

	return inst
}

func TestNestedConstruction(t *testing.T) {
	endpoint, _, service := nestedSchemas(t)
	inst := newService(t, service)

	primary, err := record.Value[*record.Instance](inst, "primary")
	require.NoError(t, err)
	assert.Same(t, endpoint, primary.Schema())

	resolved, ok := record.SchemaOf(endpoint.Type())
	require.True(t, ok)
	assert.Same(t, endpoint, resolved)

	_, ok = record.SchemaOf(typedesc.Int)
	assert.False(t, ok)
	assert.Equal(t, 8080, primary.MustGet("port"))

	replicas := inst.MustGet("replicas").(typedesc.List)
	require.Len(t, replicas, 2)
	assert.Equal(t, 81, replicas[0].(*record.Instance).MustGet("port"))
	assert.Equal(t, "c.local", replicas[1].(*record.Instance).MustGet("host"))
	assert.Equal(t, 80, replicas[1].(*record.Instance).MustGet("port"))

	assert.Equal(t, typedesc.NewSet("x", "y"), inst.MustGet("tags"))
	assert.Equal(t, typedesc.Dict{"a": 0.5, "b": 1.0}, inst.MustGet("weights"))
	assert.Equal(t, typedesc.Dict{1: 10}, inst.MustGet("limits"))

	// an existing instance is kept as is
	again, err := service.New("api", primary, []any{}, []any{}, map[string]any{})
	require.NoError(t, err)
	assert.Same(t, primary, again.MustGet("primary"))
}

func TestNestedConstructionFailure(t *testing.T) {
	_, pair, _ := nestedSchemas(t)

	holder := record.NewBuilder("Holder").
		Field(record.NewField("p", pair.Type())).
		MustFinalize()

	_, err := holder.New(5.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, cast.ErrRecordConstruct)
	assert.ErrorIs(t, err, cast.ErrType)

	var fe *record.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "p", fe.Field)

	inst, err := holder.New([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, inst.MustGet("p").(*record.Instance).MustGet("b"))
}

func TestRoundTrip(t *testing.T) {
	_, _, service := nestedSchemas(t)
	inst := newService(t, service)

	t.Run("map", func(t *testing.T) {
		back, err := service.FromMap(inst.AsMap())
		require.NoError(t, err)

		if !assert.True(t, inst.Equal(back)) {
			t.Log(spew.Sdump(inst.AsMap(), back.AsMap()))
		}
	})

	t.Run("json", func(t *testing.T) {
		data, err := inst.AsJSON()
		require.NoError(t, err)

		back, err := service.FromJSON(data)
		require.NoError(t, err)

		if !assert.True(t, inst.Equal(back)) {
			t.Log(string(data))
		}
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := inst.AsYAML()
		require.NoError(t, err)

		back, err := service.FromYAML(data)
		require.NoError(t, err)

		if !assert.True(t, inst.Equal(back)) {
			t.Log(string(data))
		}
	})
}

func TestRoundTrip_TypedDictKeys(t *testing.T) {
	s := record.NewBuilder("Calendar").
		Field(
			record.NewField("at", typedesc.DictOf(typedesc.Time, typedesc.Int)),
			record.NewField("owners", typedesc.DictOf(typedesc.UUID, typedesc.String)),
			record.NewField("every", typedesc.DictOf(typedesc.Duration, typedesc.Bool)),
		).
		MustFinalize()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	owner := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	inst, err := s.New(
		map[any]any{at: 1},
		map[any]any{owner: "ops"},
		map[any]any{2 * time.Hour: true},
	)
	require.NoError(t, err)

	m := inst.AsMap()
	assert.Equal(t, map[string]any{"2024-01-02T03:04:05Z": 1}, m["at"])
	assert.Equal(t, map[string]any{"6ba7b810-9dad-11d1-80b4-00c04fd430c8": "ops"}, m["owners"])
	assert.Equal(t, map[string]any{"2h0m0s": true}, m["every"])

	back, err := s.FromMap(m)
	require.NoError(t, err)
	assert.True(t, inst.Equal(back), spew.Sdump(m))

	data, err := inst.AsJSON()
	require.NoError(t, err)

	back, err = s.FromJSON(data)
	require.NoError(t, err)
	assert.True(t, inst.Equal(back), string(data))

	data, err = inst.AsYAML()
	require.NoError(t, err)

	back, err = s.FromYAML(data)
	require.NoError(t, err)
	assert.True(t, inst.Equal(back), string(data))
}

func TestRecordsAreNotSetElements(t *testing.T) {
	point := record.NewBuilder("P").
		Field(record.NewField("x", typedesc.Int)).
		MustFinalize()

	s := record.NewBuilder("Shape").
		Field(record.NewField("points", typedesc.SetOf(point.Type()))).
		MustFinalize()

	_, err := s.New([]any{[]any{1}, []any{1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, cast.ErrUnhashable)

	var fe *record.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "points", fe.Field)
}

func TestAsMapShape(t *testing.T) {
	_, _, service := nestedSchemas(t)
	m := newService(t, service).AsMap()

	assert.Equal(t, map[string]any{"host": "a.local", "port": 8080}, m["primary"])
	assert.Equal(t, []any{"x", "y"}, m["tags"])
	assert.Equal(t, map[string]any{"1": 10}, m["limits"])

	replicas, ok := m["replicas"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"host": "c.local", "port": 80}, replicas[1])
}

func TestJSONCodecOverride(t *testing.T) {
	var marshalled bool

	s := record.NewBuilder("Custom").
		Field(record.NewField("a", typedesc.Int)).
		JSONCodec(record.Codec{
			Marshal: func(v any) ([]byte, error) {
				marshalled = true
				return []byte(fmt.Sprintf(`{"a":%d}`, v.(map[string]any)["a"])), nil
			},
			Unmarshal: func(_ []byte, v any) error {
				*v.(*map[string]any) = map[string]any{"a": "42"}
				return nil
			},
		}).
		MustFinalize()

	inst, err := s.FromJSON([]byte("ignored"))
	require.NoError(t, err)
	assert.Equal(t, 42, inst.MustGet("a"))

	data, err := inst.AsJSON()
	require.NoError(t, err)
	assert.True(t, marshalled)
	assert.JSONEq(t, `{"a":42}`, string(data))

	child := record.NewBuilder("Child").Extends(s).MustFinalize()

	inst, err = child.FromJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, 42, inst.MustGet("a"))
}

func TestInheritance(t *testing.T) {
	base := record.NewBuilder("Base").
		Field(
			record.NewField("x", typedesc.String),
			record.NewField("y", typedesc.Int),
			record.NewField("z", typedesc.Int),
		).
		FieldHandler("x", constant("base")).
		TypeHandler(typedesc.Int, constant(-1)).
		MustFinalize()

	child := record.NewBuilder("Child").
		Extends(base).
		Field(
			record.NewField("z", typedesc.String),
			record.NewField("w", typedesc.Bool),
		).
		FieldHandler("x", constant("child")).
		MustFinalize()

	assert.Equal(t, []string{"x", "y", "z", "w"}, child.FieldNames())
	assert.Equal(t, []*record.Schema{base}, child.Parents())

	inst, err := child.New("", "5", 6, "yes")
	require.NoError(t, err)
	assert.Equal(t, "child", inst.MustGet("x"))
	assert.Equal(t, -1, inst.MustGet("y"))
	assert.Equal(t, "6", inst.MustGet("z"))
	assert.Equal(t, true, inst.MustGet("w"))

	inst, err = base.New("", "5", 6)
	require.NoError(t, err)
	assert.Equal(t, "base", inst.MustGet("x"))

	assert.NotNil(t, child.TypeHandlerFor(typedesc.Int))
	assert.Nil(t, child.TypeHandlerFor(typedesc.String))
	assert.Nil(t, child.FieldHandlerFor("w"))
}

func TestInheritedDependencies(t *testing.T) {
	base := record.NewBuilder("Sized").
		Field(
			record.NewField("items", typedesc.ListOf(typedesc.Int)),
			record.CalculatedField("size", typedesc.Int, []string{"items"}),
		).
		FieldHandler("size", func(inst *record.Instance, _ any) (any, error) {
			return len(inst.MustGet("items").(typedesc.List)), nil
		}).
		MustFinalize()

	child := record.NewBuilder("Labelled").
		Extends(base).
		Field(record.CalculatedField("label", typedesc.String, []string{"size"})).
		FieldHandler("label", record.MustAdaptHandler(func(inst *record.Instance, _ any) string {
			return fmt.Sprintf("%d items", inst.MustGet("size"))
		})).
		MustFinalize()

	inst, err := child.New("123")
	require.NoError(t, err)
	assert.Equal(t, "3 items", inst.MustGet("label"))
}

func TestAdaptHandler(t *testing.T) {
	_, err := record.AdaptHandler(42)
	assert.ErrorIs(t, err, record.ErrHandlerNotFunc)

	for _, fn := range []any{
		func() {},
		func(int, int) int { return 0 },
		func(int) {},
		func(int) (int, bool) { return 0, false },
		func(...int) int { return 0 },
	} {
		_, err := record.AdaptHandler(fn)
		assert.ErrorIs(t, err, record.ErrNotAHandler, "%T", fn)
	}

	h, err := record.AdaptHandler(strings.ToUpper)
	require.NoError(t, err)

	out, err := h(nil, "abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", out)

	out, err = h(nil, 12)
	require.NoError(t, err)
	assert.Equal(t, "12", out)

	boom := errors.New("boom")

	h, err = record.AdaptHandler(func(int) (int, error) { return 0, boom })
	require.NoError(t, err)

	_, err = h(nil, 1)
	assert.ErrorIs(t, err, boom)

	h = record.MustAdaptHandler(func(v []int) int { return len(v) })
	_, err = h(nil, "x")
	assert.ErrorIs(t, err, cast.ErrType)

	assert.Panics(t, func() { record.MustAdaptHandler(nil) })
}

func TestSingleton(t *testing.T) {
	s := record.NewBuilder("Settings").
		Field(record.NewField("n", typedesc.Int)).
		MustFinalize()

	builds := 0
	fail := true

	single := record.NewSingleton(func() (*record.Instance, error) {
		builds++
		if fail {
			return nil, errors.New("not ready")
		}

		return s.New(builds)
	})

	_, err := single.Get()
	require.Error(t, err)

	fail = false

	first, err := single.Get()
	require.NoError(t, err)

	second, err := single.Get()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 2, builds)

	single.Reset()

	third, err := single.Get()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 3, third.MustGet("n"))
}

func TestDiffAndMerge(t *testing.T) {
	_, _, service := nestedSchemas(t)
	a := newService(t, service)

	b, err := a.Merge(map[string]any{
		"name":    "api-v2",
		"primary": map[string]any{"port": 8081},
	})
	require.NoError(t, err)

	assert.Equal(t, "a.local", b.MustGet("primary").(*record.Instance).MustGet("host"))

	changes, err := record.Diff(a, b)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, record.Change{Path: "name", Old: "api", New: "api-v2"}, changes[0])
	assert.Equal(t, record.Change{Path: "primary.port", Old: 8080, New: 8081}, changes[1])
	assert.Equal(t, "primary.port: 8080 -> 8081", changes[1].String())

	text, err := record.DiffText(a, b)
	require.NoError(t, err)

	var added, removed []string

	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			added = append(added, strings.TrimSpace(line[1:]))
		case strings.HasPrefix(line, "-"):
			removed = append(removed, strings.TrimSpace(line[1:]))
		}
	}

	assert.ElementsMatch(t, []string{"name: api-v2", "port: 8081"}, added)
	assert.ElementsMatch(t, []string{"name: api", "port: 8080"}, removed)

	same, err := record.DiffText(a, a)
	require.NoError(t, err)
	assert.Empty(t, same)

	_, err = a.Merge(map[string]any{"ghost": 1})
	assert.ErrorIs(t, err, record.ErrUnknownField)

	other := record.NewBuilder("Other").Field(record.NewField("a", typedesc.Int)).MustFinalize()
	_, err = record.Diff(a, other.MustNew(1))
	assert.ErrorIs(t, err, record.ErrSchemaMismatch)
}

func TestDiffNilInstances(t *testing.T) {
	_, _, service := nestedSchemas(t)
	a := newService(t, service)

	for _, pair := range [][2]*record.Instance{{nil, a}, {a, nil}, {nil, nil}} {
		_, err := record.Diff(pair[0], pair[1])
		assert.ErrorIs(t, err, record.ErrSchemaMismatch)

		_, err = record.DiffText(pair[0], pair[1])
		assert.ErrorIs(t, err, record.ErrSchemaMismatch)
	}

	_, err := record.Diff(nil, a)
	assert.EqualError(t, err, "instances belong to different schemas: <nil> and Service")
}
