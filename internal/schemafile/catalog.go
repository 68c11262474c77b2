package schemafile

import (
	"strings"

	"recordcast/config"
	"recordcast/record"
)

// Catalog maps the handler names usable in schema files to handlers.
type Catalog map[string]record.Handler

// DefaultCatalog returns the built-in handlers.
func DefaultCatalog() Catalog {
	return Catalog{
		"textual_bool": config.TextualBool,
		"trim":         record.MustAdaptHandler(strings.TrimSpace),
		"lower":        record.MustAdaptHandler(strings.ToLower),
		"upper":        record.MustAdaptHandler(strings.ToUpper),
	}
}

// With returns a copy of c extended with extra; extra wins on name clashes.
func (c Catalog) With(extra Catalog) Catalog {
	out := make(Catalog, len(c)+len(extra))
	for k, h := range c {
		out[k] = h
	}

	for k, h := range extra {
		out[k] = h
	}

	return out
}
