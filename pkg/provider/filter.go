package provider

import (
	"iter"

	"github.com/vulntor/relay/pkg/event"
)

// Discriminator decides whether a listener is kept for an event.
type Discriminator func(e any, l event.Listener) bool

// Filter decorates a provider and discards the listeners rejected by a
// discriminator. Errors from the decorated provider pass through.
type Filter struct {
	decorated     event.Provider
	discriminator Discriminator
}

// NewFilter creates a Filter around p.
func NewFilter(p event.Provider, discriminator Discriminator) *Filter {
	return &Filter{decorated: p, discriminator: discriminator}
}

// ListenersFor implements event.Provider.
func (f *Filter) ListenersFor(e any) iter.Seq2[event.Listener, error] {
	return func(yield func(event.Listener, error) bool) {
		for l, err := range f.decorated.ListenersFor(e) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !f.discriminator(e, l) {
				continue
			}
			if !yield(l, nil) {
				return
			}
		}
	}
}
