// pkg/dispatch/dispatcher.go
// Package dispatch delivers events to the listeners of a provider.
//
// Dispatch is synchronous: listeners run one after the other on the caller's
// goroutine, in provider order. A listener stops the propagation of a
// Stoppable event by marking it stopped; a listener error stops it too and is
// returned to the caller as is.
package dispatch

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vulntor/relay/pkg/event"
)

// Dispatcher is the basic event.Dispatcher.
type Dispatcher struct {
	provider event.Provider
	logger   zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger of the dispatcher.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher over provider.
func New(provider event.Provider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		provider: provider,
		logger:   log.With().Str("component", "dispatcher").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch invokes the listeners of e and returns e.
//
// An event that is already stopped is returned without consulting the
// provider. Panics raised by listeners are not recovered.
func (d *Dispatcher) Dispatch(ctx context.Context, e any) (any, error) {
	stoppable, isStoppable := e.(event.Stoppable)
	if isStoppable && stoppable.IsPropagationStopped() {
		return e, nil
	}

	invoked := 0
	for l, err := range d.provider.ListenersFor(e) {
		if err != nil {
			return e, err
		}
		if err := l.Handle(ctx, e); err != nil {
			return e, err
		}
		invoked++
		if isStoppable && stoppable.IsPropagationStopped() {
			d.logger.Trace().Type("event", e).Int("invoked", invoked).Msg("Propagation stopped")
			break
		}
	}

	return e, nil
}
