package provider

import (
	"iter"
	"slices"

	"github.com/vulntor/relay/pkg/event"
)

// Chain concatenates the listeners of several providers, in chain order.
type Chain struct {
	providers []event.Provider
}

// NewChain creates a Chain of providers.
func NewChain(providers ...event.Provider) *Chain {
	c := &Chain{}
	c.Append(providers...)
	return c
}

// Append adds providers to the end of the chain.
func (c *Chain) Append(providers ...event.Provider) {
	c.providers = append(c.providers, providers...)
}

// Prepend adds providers to the beginning of the chain, keeping their
// relative order.
func (c *Chain) Prepend(providers ...event.Provider) {
	c.providers = slices.Insert(c.providers, 0, providers...)
}

// ListenersFor implements event.Provider.
func (c *Chain) ListenersFor(e any) iter.Seq2[event.Listener, error] {
	return func(yield func(event.Listener, error) bool) {
		for _, p := range slices.Clone(c.providers) {
			for l, err := range p.ListenersFor(e) {
				if !yield(l, err) || err != nil {
					return
				}
			}
		}
	}
}
