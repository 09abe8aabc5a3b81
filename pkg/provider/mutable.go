// pkg/provider/mutable.go
package provider

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vulntor/relay/pkg/event"
)

var (
	// ErrDuplicateListener is returned when a listener is registered twice for
	// the same event type.
	ErrDuplicateListener = errors.New("listener already registered for event type")

	// ErrListenerNotComparable is returned for listeners without an identity,
	// such as event.ListenerFunc values. Wrap them with event.NewListener.
	ErrListenerNotComparable = errors.New("listener is not comparable")

	// ErrNilListener is returned when registering a nil listener.
	ErrNilListener = errors.New("nil listener")

	// ErrNilType is returned when registering against a nil event type.
	ErrNilType = errors.New("nil event type")

	// ErrTypeConflict is returned when an event type reuses the name of an
	// already registered type with a different matcher.
	ErrTypeConflict = errors.New("event type name already bound to another type")
)

// slot is one registered listener together with the registration owning it.
type slot struct {
	id       uuid.UUID
	listener event.Listener
}

type typeListeners struct {
	typ   event.Type
	slots []slot
}

func (t *typeListeners) contains(l event.Listener) bool {
	return slices.ContainsFunc(t.slots, func(s slot) bool { return s.listener == l })
}

// Mutable is a provider whose listeners can be appended, prepended and removed
// at runtime.
//
// Event types are consulted in the order they were first registered and are
// keyed by name; a name stays bound to the Go type it was first registered
// with. Listener identity is Go equality of the listener values.
//
// Mutable is not safe for concurrent use; callers must serialize registration,
// removal and dispatch.
type Mutable struct {
	entries []*typeListeners
	index   map[string]*typeListeners
	logger  zerolog.Logger
}

// NewMutable creates an empty Mutable provider.
func NewMutable() *Mutable {
	return &Mutable{
		index:  make(map[string]*typeListeners),
		logger: log.With().Str("component", "provider.mutable").Logger(),
	}
}

// Registration is the handle returned when a listener is registered. It
// owns one slot of one event type and removes only that slot.
type Registration struct {
	id       uuid.UUID
	provider *Mutable
	typ      event.Type
}

// ID returns the unique identifier of the registration.
func (r *Registration) ID() uuid.UUID {
	return r.id
}

// Type returns the event type the listener was registered for.
func (r *Registration) Type() event.Type {
	return r.typ
}

// Remove de-registers the listener. Removing twice is a no-op.
func (r *Registration) Remove() {
	r.provider.remove(r)
}

// Append registers l at the end of t's listeners.
func (m *Mutable) Append(t event.Type, l event.Listener) (*Registration, error) {
	return m.register(t, l, false)
}

// Prepend registers l ahead of t's listeners.
func (m *Mutable) Prepend(t event.Type, l event.Listener) (*Registration, error) {
	return m.register(t, l, true)
}

func (m *Mutable) register(t event.Type, l event.Listener, prepend bool) (*Registration, error) {
	if t == nil {
		return nil, ErrNilType
	}
	if l == nil {
		return nil, ErrNilListener
	}
	if !reflect.TypeOf(l).Comparable() {
		return nil, fmt.Errorf("%w: %T", ErrListenerNotComparable, l)
	}

	entry, ok := m.index[t.Name()]
	if !ok {
		entry = &typeListeners{typ: t}
		m.index[t.Name()] = entry
		m.entries = append(m.entries, entry)
	} else if reflect.TypeOf(entry.typ) != reflect.TypeOf(t) {
		return nil, fmt.Errorf("%w: %s", ErrTypeConflict, t.Name())
	}

	if entry.contains(l) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateListener, t.Name())
	}

	s := slot{id: uuid.New(), listener: l}
	if prepend {
		entry.slots = slices.Insert(entry.slots, 0, s)
	} else {
		entry.slots = append(entry.slots, s)
	}

	reg := &Registration{id: s.id, provider: m, typ: t}
	m.logger.Debug().
		Str("event", t.Name()).
		Str("registration", reg.id.String()).
		Bool("prepend", prepend).
		Msg("Listener registered")
	return reg, nil
}

// remove deletes the slot owned by r. A registration whose slot is gone,
// including one whose listener was registered again since, removes nothing.
func (m *Mutable) remove(r *Registration) {
	entry, ok := m.index[r.typ.Name()]
	if !ok {
		return
	}
	i := slices.IndexFunc(entry.slots, func(s slot) bool { return s.id == r.id })
	if i < 0 {
		return
	}
	entry.slots = slices.Delete(entry.slots, i, i+1)
	m.logger.Debug().
		Str("event", r.typ.Name()).
		Str("registration", r.id.String()).
		Msg("Listener removed")
}

// ListenersFor implements event.Provider. The matching listeners are captured
// when iteration starts, so registrations made by a listener take effect on
// the next dispatch.
func (m *Mutable) ListenersFor(e any) iter.Seq2[event.Listener, error] {
	return func(yield func(event.Listener, error) bool) {
		var matched []event.Listener
		for _, entry := range m.entries {
			if !event.Matches(entry.typ, e) {
				continue
			}
			for _, s := range entry.slots {
				matched = append(matched, s.listener)
			}
		}
		for _, l := range matched {
			if !yield(l, nil) {
				return
			}
		}
	}
}
