// pkg/provider/map.go
// Package provider implements the listener providers consumed by dispatchers.
//
// Every provider yields listeners lazily, in a provider-defined order, for the
// entries whose event type matches the dispatched event. Sequences are rebuilt
// on every call, so changes made between two dispatches are always visible.
package provider

import (
	"iter"

	"github.com/vulntor/relay/pkg/event"
)

// MapEntry binds listeners to an event type.
type MapEntry struct {
	Type      event.Type
	Listeners []event.Listener
}

// Map is a static provider backed by a table of event types to listeners.
type Map struct {
	entries []MapEntry
}

// NewMap creates a Map. Entries are consulted in the given order.
func NewMap(entries ...MapEntry) *Map {
	return &Map{entries: entries}
}

// ListenersFor implements event.Provider.
func (m *Map) ListenersFor(e any) iter.Seq2[event.Listener, error] {
	return func(yield func(event.Listener, error) bool) {
		for _, entry := range m.entries {
			if !event.Matches(entry.Type, e) {
				continue
			}
			for _, l := range entry.Listeners {
				if !yield(l, nil) {
					return
				}
			}
		}
	}
}
