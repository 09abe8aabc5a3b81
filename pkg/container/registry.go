// pkg/container/registry.go
// Package container provides the service locator used by container-backed
// listener providers.
package container

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/vulntor/relay/pkg/event"
)

var (
	// ErrServiceNotFound is returned when no service is registered under an id.
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceExists is returned when an id is registered twice.
	ErrServiceExists = errors.New("service already registered")
)

// Factory builds a listener the first time its id is requested. Factories run
// with the registry locked and must not call back into it.
type Factory func() (event.Listener, error)

// Registry maps listener ids to lazily built listener instances. Each id is
// built at most once; later lookups return the same instance.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	instances map[string]event.Listener
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]event.Listener),
	}
}

// Register adds a factory for id.
func (r *Registry) Register(id string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.exists(id) {
		return fmt.Errorf("%w: %s", ErrServiceExists, id)
	}
	r.factories[id] = factory
	return nil
}

// Set registers an already built listener under id.
func (r *Registry) Set(id string, l event.Listener) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.exists(id) {
		return fmt.Errorf("%w: %s", ErrServiceExists, id)
	}
	r.instances[id] = l
	return nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exists(id)
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.factories)+len(r.instances))
	for id := range r.factories {
		ids = append(ids, id)
	}
	for id := range r.instances {
		if _, ok := r.factories[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Get returns the listener registered under id, building it on first use.
func (r *Registry) Get(id string) (event.Listener, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.instances[id]; ok {
		return l, nil
	}
	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}

	l, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to build service '%s': %w", id, err)
	}
	if l == nil {
		return nil, fmt.Errorf("failed to build service '%s': factory returned nil", id)
	}
	r.instances[id] = l
	return l, nil
}

func (r *Registry) exists(id string) bool {
	_, hasFactory := r.factories[id]
	_, hasInstance := r.instances[id]
	return hasFactory || hasInstance
}
