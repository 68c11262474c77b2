package record

import (
	"sync"
)

// Singleton guards one process-wide instance built on first use. A failed
// build is not cached; the next Get tries again.
type Singleton struct {
	mu    sync.Mutex
	build func() (*Instance, error)
	inst  *Instance
}

func NewSingleton(build func() (*Instance, error)) *Singleton {
	return &Singleton{build: build}
}

// Get returns the cached instance, building it on the first call.
func (s *Singleton) Get() (*Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inst != nil {
		return s.inst, nil
	}

	inst, err := s.build()
	if err != nil {
		return nil, err
	}

	s.inst = inst

	return inst, nil
}

// Set replaces the cached instance.
func (s *Singleton) Set(inst *Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inst = inst
}

// Reset drops the cached instance so the next Get builds a new one.
func (s *Singleton) Reset() {
	s.Set(nil)
}
