// Package typedesc describes declared field types as a closed set of
// descriptors: Primitive, Sequence, Mapping, Record, Placeholder and Generic.
//
// The cast package dispatches on these descriptors instead of inspecting Go
// types at runtime. Each primitive kind has exactly one runtime representation:
//
//	int       -> int
//	float     -> float64
//	str       -> string
//	bool      -> bool
//	bytes     -> []byte
//	duration  -> time.Duration
//	time      -> time.Time
//	uuid      -> uuid.UUID
//
// Containers are materialized as List, Tuple, Set, FrozenSet and Dict so the
// container kind survives casting.
//
// # Type expressions
//
// Parse accepts the textual form used by schema files:
//
//	list[int]
//	dict[str, list[float]]
//	frozenset[uuid]
//	list          (bare container, rejected by cast.Cast)
//	list[~T]      (placeholder element, rejected by cast.Cast)
//	Endpoint      (record name, looked up through a Resolver)
package typedesc
