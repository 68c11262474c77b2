// Package record declares record schemas and constructs typed instances.
//
// A schema is declared with a Builder and finalized once. Finalization merges
// the handler registries of the parent schemas with the schema's own
// handlers and fixes the order in which fields are processed, so that a
// field runs after every field it depends on.
//
// Constructing an instance binds positional and named values to fields,
// fills defaults and runs each field, in that fixed order, through its field
// handler, its type handler or the cast package.
package record
