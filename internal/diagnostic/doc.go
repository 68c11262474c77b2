// Package diagnostic collects schema-definition problems so a record type
// reports every mistake at once instead of stopping at the first.
//
// Key capabilities:
//   - Coded errors and warnings tied to a schema and field
//   - A combined error that still matches each cause with errors.Is
package diagnostic
