// pkg/event/event.go
// Package event defines the contracts shared by listener providers and dispatchers.
//
// An event is any Go value. Listeners are registered against an event Type and
// are invoked for every event the type matches. Events that implement Stoppable
// can halt propagation from inside a listener.
package event

import (
	"context"
	"iter"
)

// Listener handles an event.
//
// A returned error halts the dispatch and is surfaced to the caller unchanged;
// the remaining listeners are not invoked.
type Listener interface {
	Handle(ctx context.Context, e any) error
}

// ListenerFunc adapts a plain function to the Listener interface.
//
// Function values are not comparable in Go, so a ListenerFunc cannot be
// registered on a mutable provider. Use NewListener when the listener needs an
// identity (de-registration, duplicate detection).
type ListenerFunc func(ctx context.Context, e any) error

// Handle implements Listener.
func (f ListenerFunc) Handle(ctx context.Context, e any) error {
	return f(ctx, e)
}

// funcListener gives a function a pointer identity.
type funcListener struct {
	fn ListenerFunc
}

func (l *funcListener) Handle(ctx context.Context, e any) error {
	return l.fn(ctx, e)
}

// NewListener wraps fn into a Listener with its own identity. Two calls with
// the same function produce two distinct listeners.
func NewListener(fn func(ctx context.Context, e any) error) Listener {
	return &funcListener{fn: fn}
}

// Stoppable is implemented by events that can report whether propagation has
// been stopped.
type Stoppable interface {
	IsPropagationStopped() bool
}

// StoppableEvent is an embeddable helper implementing Stoppable.
type StoppableEvent struct {
	stopped bool
}

// StopPropagation marks the event as stopped. Listeners after the current one
// are not invoked.
func (e *StoppableEvent) StopPropagation() {
	e.stopped = true
}

// IsPropagationStopped implements Stoppable.
func (e *StoppableEvent) IsPropagationStopped() bool {
	return e.stopped
}

// IsStopped reports whether e is a Stoppable event whose propagation has been
// stopped.
func IsStopped(e any) bool {
	s, ok := e.(Stoppable)
	return ok && s.IsPropagationStopped()
}

// Provider produces the listeners applicable to an event.
//
// The returned sequence is computed fresh on every call and may be ranged over
// more than once. A non-nil error ends the sequence; it comes from the
// provider's collaborators (e.g. a service locator) and must be surfaced as is.
type Provider interface {
	ListenersFor(e any) iter.Seq2[Listener, error]
}

// Dispatcher delivers an event to its listeners and returns the same event.
type Dispatcher interface {
	Dispatch(ctx context.Context, e any) (any, error)
}
