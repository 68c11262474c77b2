// Package cast coerces loosely typed values (strings from the environment,
// numbers and maps decoded from JSON or YAML) into the shape described by a
// typedesc.Type.
//
// Cast recurses into containers and nested records. An Overrides table keyed
// by target type replaces generic construction for that type at every depth,
// which is how record-level type handlers reach list elements and dict values.
//
// # Primitive conversions
//
//   - int:      numbers (floats truncate), bools, decimal text
//   - float:    numbers, bools, decimal text
//   - str:      any scalar; durations as "2h45m0s", times as RFC3339Nano
//   - bool:     numbers (non-zero), textual yes/no/on/off/true/false/1/0,
//     collections by non-emptiness
//   - bytes:    text, uuid
//   - duration: "2h45m" text, integer nanoseconds, float or unitless seconds
//   - time:     RFC3339Nano text, integer Unix seconds
//   - uuid:     canonical text, 16 raw bytes
//
// # Errors
//
// Every failure is an *Error wrapping ErrType (the target cannot be built
// from the value, or the target shape itself is forbidden) or ErrValue (the
// value lacks the structure the target needs).
package cast
