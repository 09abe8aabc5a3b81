// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package dispatch

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vulntor/relay/pkg/event"
)

// Buffered decorates a dispatcher to defer events until Flush.
//
// Listeners of a buffered event run late, so callers must not expect the
// event to be modified when Dispatch returns.
//
// Buffered is not safe for concurrent use.
type Buffered struct {
	decorated     event.Dispatcher
	discriminator func(e any) bool
	buffer        []any
	logger        zerolog.Logger
}

// BufferedOption configures a Buffered dispatcher.
type BufferedOption func(*Buffered)

// WithDiscriminator sets the predicate deciding which events are buffered.
// Events it rejects are dispatched immediately. By default every event is
// buffered.
func WithDiscriminator(fn func(e any) bool) BufferedOption {
	return func(b *Buffered) {
		b.discriminator = fn
	}
}

// WithBufferedLogger sets the logger of the buffered dispatcher.
func WithBufferedLogger(logger zerolog.Logger) BufferedOption {
	return func(b *Buffered) {
		b.logger = logger
	}
}

// NewBuffered creates a Buffered dispatcher around decorated.
func NewBuffered(decorated event.Dispatcher, opts ...BufferedOption) *Buffered {
	b := &Buffered{
		decorated: decorated,
		logger:    log.With().Str("component", "dispatcher.buffered").Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dispatch buffers e, or dispatches it right away when the discriminator
// rejects it. Stopped events are returned untouched.
func (b *Buffered) Dispatch(ctx context.Context, e any) (any, error) {
	if event.IsStopped(e) {
		return e, nil
	}

	if b.discriminator != nil && !b.discriminator(e) {
		return b.decorated.Dispatch(ctx, e)
	}

	b.buffer = append(b.buffer, e)
	return e, nil
}

// Len returns the number of buffered events.
func (b *Buffered) Len() int {
	return len(b.buffer)
}

// Flush dispatches the buffered events in the order they were buffered and
// returns them. The buffer is emptied before the first dispatch, so events
// buffered by listeners during the flush wait for the next one.
//
// On a dispatch error, Flush returns the events dispatched so far, the
// failing one included, together with the error. The rest of the batch is
// discarded.
func (b *Buffered) Flush(ctx context.Context) ([]any, error) {
	batch := b.buffer
	b.buffer = nil

	if len(batch) == 0 {
		return []any{}, nil
	}

	for i, e := range batch {
		if _, err := b.decorated.Dispatch(ctx, e); err != nil {
			if dropped := len(batch) - i - 1; dropped > 0 {
				b.logger.Warn().Err(err).Int("dropped", dropped).Msg("Flush interrupted, discarding remaining events")
			}
			return batch[:i+1], err
		}
	}

	b.logger.Trace().Int("events", len(batch)).Msg("Flushed buffered events")
	return batch, nil
}
