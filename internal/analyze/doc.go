// Package analyze loads Go packages and turns their struct types into
// schema declarations.
//
// It uses golang.org/x/tools/go/packages with go/types to build an
// in-memory model of structs and their fields, then Export maps every
// field to a type expression:
//
//   - integers, floats, strings and bools become int, float, str and bool
//   - []byte becomes bytes; other slices and arrays become list[...]
//   - maps become dict[...]
//   - time.Time, time.Duration and uuid.UUID become time, duration and uuid
//   - pointers become nullable fields defaulting to null
//   - named structs become schemas of their own; embedded structs become
//     parents
//
// Field names come from the recordcast tag, then the json tag, then the
// snake_case form of the Go name. The recordcast tag also carries options:
//
//	Port int `recordcast:"port,default=8080,env=APP_PORT"`
//	Raw  any `recordcast:"-"`
package analyze
