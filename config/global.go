package config

import (
	"sync"

	"recordcast/record"
)

var (
	globalsMu sync.Mutex
	globals   = make(map[*record.Schema]*record.Singleton)
)

// Global returns the process-wide instance of schema, building it from the
// environment on first use. Later calls return the cached instance and
// ignore loader. A failed build is retried on the next call.
func Global(schema *record.Schema, loader *Loader) (*record.Instance, error) {
	globalsMu.Lock()

	s, ok := globals[schema]
	if !ok {
		if loader == nil {
			loader = NewLoader()
		}

		s = record.NewSingleton(func() (*record.Instance, error) {
			return loader.FromEnviron(schema)
		})
		globals[schema] = s
	}

	globalsMu.Unlock()

	return s.Get()
}

// ResetGlobal drops the cached instance of schema.
func ResetGlobal(schema *record.Schema) {
	globalsMu.Lock()
	defer globalsMu.Unlock()

	delete(globals, schema)
}
