package provider

import (
	"iter"

	"github.com/vulntor/relay/pkg/event"
)

// Locator resolves a listener identifier to a listener instance.
type Locator interface {
	Get(id string) (event.Listener, error)
}

// ContainerEntry binds ordered listener identifiers to an event type.
type ContainerEntry struct {
	Type event.Type
	IDs  []string
}

// Container is a provider whose listeners are resolved lazily from a Locator.
//
// The table is usually produced by the compiler from resolved listener
// orders. Identifiers are resolved only when the sequence reaches them; a
// resolution error ends the sequence and is yielded unchanged.
type Container struct {
	table   []ContainerEntry
	locator Locator
}

// NewContainer creates a Container.
func NewContainer(table []ContainerEntry, locator Locator) *Container {
	return &Container{table: table, locator: locator}
}

// Table returns the provider's table.
func (c *Container) Table() []ContainerEntry {
	return c.table
}

// ListenersFor implements event.Provider.
func (c *Container) ListenersFor(e any) iter.Seq2[event.Listener, error] {
	return func(yield func(event.Listener, error) bool) {
		for _, entry := range c.table {
			if !event.Matches(entry.Type, e) {
				continue
			}
			for _, id := range entry.IDs {
				l, err := c.locator.Get(id)
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(l, nil) {
					return
				}
			}
		}
	}
}
