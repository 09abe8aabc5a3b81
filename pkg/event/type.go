// pkg/event/type.go
package event

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrDuplicateType is returned when two types with the same name are
// registered.
var ErrDuplicateType = errors.New("duplicate event type")

// Type designates the events a listener is registered for.
//
// Match reports whether an event instance belongs to the type: the event's
// dynamic type is the designated concrete type, or implements it when the
// designated type is an interface.
type Type interface {
	Name() string
	Match(e any) bool
}

type typeTag[T any] struct {
	name string
}

func (t typeTag[T]) Name() string { return t.name }

func (t typeTag[T]) Match(e any) bool {
	_, ok := e.(T)
	return ok
}

func (t typeTag[T]) String() string { return t.name }

// TypeOf returns the Type for T, named after T's Go type (e.g. "*orders.Placed").
func TypeOf[T any]() Type {
	return typeTag[T]{name: reflect.TypeFor[T]().String()}
}

// NamedType returns the Type for T under an explicit name. Use it when the
// name must stay stable across refactors, e.g. when referenced from
// definition files.
func NamedType[T any](name string) Type {
	return typeTag[T]{name: name}
}

// Matches is the single matching predicate used by every provider.
func Matches(t Type, e any) bool {
	if t == nil || e == nil {
		return false
	}
	return t.Match(e)
}

// TypeRegistry indexes event types by name.
//
// The compiler uses it to check that definitions reference an existing event
// type or interface, and to turn type names back into Types.
type TypeRegistry struct {
	types map[string]Type
	names []string
}

// NewTypeRegistry creates a registry holding types.
func NewTypeRegistry(types ...Type) (*TypeRegistry, error) {
	r := &TypeRegistry{types: make(map[string]Type)}
	if err := r.Register(types...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds types to the registry.
func (r *TypeRegistry) Register(types ...Type) error {
	if r.types == nil {
		r.types = make(map[string]Type)
	}
	for _, t := range types {
		if t == nil {
			continue
		}
		name := t.Name()
		if _, exists := r.types[name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateType, name)
		}
		r.types[name] = t
		r.names = append(r.names, name)
	}
	return nil
}

// Lookup returns the type registered under name.
func (r *TypeRegistry) Lookup(name string) (Type, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.types[name]
	return t, ok
}

// Names returns the registered names in registration order.
func (r *TypeRegistry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}
