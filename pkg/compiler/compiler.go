// pkg/compiler/compiler.go
// Package compiler turns tagged service definitions into container-backed
// listener providers.
package compiler

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vulntor/relay/pkg/definition"
	"github.com/vulntor/relay/pkg/event"
	"github.com/vulntor/relay/pkg/ordering"
	"github.com/vulntor/relay/pkg/provider"
)

const (
	DefaultProviderTag = "listener_provider"
	DefaultListenerTag = "event_listener"

	AttributeListenerTag = "listener_tag"
	AttributeEvent       = "event"
	AttributePriority    = "priority"
	AttributeBefore      = "before"
	AttributeAfter       = "after"
)

var placementAttributes = []string{AttributePriority, AttributeBefore, AttributeAfter}

var (
	// ErrMissingEvent indicates a listener tag without an event attribute.
	ErrMissingEvent = errors.New("missing event type")

	// ErrUnknownEventType indicates an event name absent from the type registry.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrMissingService indicates a listener id the locator cannot provide.
	ErrMissingService = errors.New("missing listener service")

	// ErrTypesRequired indicates Compile was called without a type registry.
	ErrTypesRequired = errors.New("event type registry required")

	// ErrLocatorRequired indicates Compile was called without a locator.
	ErrLocatorRequired = errors.New("listener locator required")
)

// Checker is implemented by locators that can tell whether an id exists
// without building it.
type Checker interface {
	Has(id string) bool
}

// Plan is the resolved listener order of one provider service.
type Plan struct {
	Provider    string           `json:"provider" yaml:"provider"`
	ListenerTag string           `json:"listener_tag" yaml:"listener_tag"`
	Mapping     ordering.Mapping `json:"mapping" yaml:"mapping"`
}

// Plans lists provider plans in declaration order.
type Plans []Plan

// Lookup returns the plan of the provider service id.
func (p Plans) Lookup(id string) (Plan, bool) {
	for _, plan := range p {
		if plan.Provider == id {
			return plan, true
		}
	}
	return Plan{}, false
}

// Pass compiles listener definitions.
type Pass struct {
	// ProviderTag identifies provider services. Defaults to DefaultProviderTag.
	ProviderTag string

	// ListenerTag is used for providers that do not set listener_tag.
	// Defaults to DefaultListenerTag.
	ListenerTag string

	// Types resolves event names. When nil, event names are not checked and
	// Compile is unavailable.
	Types *event.TypeRegistry

	// Locator provides listener instances to compiled providers. When it
	// implements Checker, listener ids are checked during planning.
	Locator provider.Locator

	logger zerolog.Logger
}

// Option configures a Pass.
type Option func(*Pass)

// WithProviderTag sets the tag that identifies provider services.
func WithProviderTag(tag string) Option {
	return func(p *Pass) {
		p.ProviderTag = tag
	}
}

// WithListenerTag sets the listener tag used when a provider does not name one.
func WithListenerTag(tag string) Option {
	return func(p *Pass) {
		p.ListenerTag = tag
	}
}

// WithTypes sets the event type registry.
func WithTypes(types *event.TypeRegistry) Option {
	return func(p *Pass) {
		p.Types = types
	}
}

// WithLocator sets the listener locator.
func WithLocator(locator provider.Locator) Option {
	return func(p *Pass) {
		p.Locator = locator
	}
}

// WithLogger sets the logger used by the pass.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pass) {
		p.logger = logger
	}
}

// NewPass creates a Pass.
func NewPass(opts ...Option) *Pass {
	p := &Pass{
		ProviderTag: DefaultProviderTag,
		ListenerTag: DefaultListenerTag,
		logger:      log.With().Str("component", "compiler").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pass) providerTag() string {
	if p.ProviderTag == "" {
		return DefaultProviderTag
	}
	return p.ProviderTag
}

func (p *Pass) listenerTag() string {
	if p.ListenerTag == "" {
		return DefaultListenerTag
	}
	return p.ListenerTag
}

// Plan resolves the listener order of every provider service in defs.
func (p *Pass) Plan(defs *definition.Definitions) (Plans, error) {
	resolver := ordering.NewResolver(ordering.WithLogger(p.logger))
	tag := p.providerTag()

	var plans Plans
	for _, svc := range defs.Services {
		tags := svc.TagsNamed(tag)
		if len(tags) == 0 {
			continue
		}

		// Only the first provider tag of a service is considered.
		listenerTag, err := tags[0].String(AttributeListenerTag)
		if err != nil {
			return nil, fmt.Errorf("provider '%s': %w", svc.ID, err)
		}
		if listenerTag == "" {
			listenerTag = p.listenerTag()
		}

		entries, err := p.collect(defs, listenerTag)
		if err != nil {
			return nil, err
		}

		mapping, err := resolver.Resolve(entries)
		if err != nil {
			return nil, fmt.Errorf("provider '%s': %w", svc.ID, err)
		}

		p.logger.Debug().
			Str("provider", svc.ID).
			Str("listener_tag", listenerTag).
			Int("events", len(mapping)).
			Int("listeners", len(entries)).
			Msg("Planned listener provider")

		plans = append(plans, Plan{Provider: svc.ID, ListenerTag: listenerTag, Mapping: mapping})
	}
	return plans, nil
}

// collect builds ordering entries from every service tagged with
// listenerTag, in service then tag declaration order.
func (p *Pass) collect(defs *definition.Definitions, listenerTag string) ([]ordering.Entry, error) {
	checker, _ := p.Locator.(Checker)

	var entries []ordering.Entry
	for _, svc := range defs.Services {
		tags := svc.TagsNamed(listenerTag)
		if len(tags) == 0 {
			continue
		}
		if checker != nil && !checker.Has(svc.ID) {
			return nil, fmt.Errorf("%w: '%s'", ErrMissingService, svc.ID)
		}
		for _, t := range tags {
			entry, err := p.entry(svc.ID, t)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (p *Pass) entry(id string, t definition.Tag) (ordering.Entry, error) {
	eventName, err := t.String(AttributeEvent)
	if err != nil {
		return ordering.Entry{}, fmt.Errorf("listener '%s': %w", id, err)
	}
	if eventName == "" {
		return ordering.Entry{}, fmt.Errorf("%w for listener '%s': set the '%s' attribute", ErrMissingEvent, id, AttributeEvent)
	}
	if p.Types != nil {
		if _, ok := p.Types.Lookup(eventName); !ok {
			return ordering.Entry{}, fmt.Errorf("%w '%s' for listener '%s'", ErrUnknownEventType, eventName, id)
		}
	}

	declared := 0
	for _, key := range placementAttributes {
		if t.Has(key) {
			declared++
		}
	}
	if declared > 1 {
		return ordering.Entry{}, ordering.NewResolveError(eventName, ordering.ErrAmbiguousPlacement, id)
	}

	entry := ordering.Entry{ID: id, Event: eventName}
	switch {
	case t.Has(AttributeBefore):
		if entry.Before, err = t.String(AttributeBefore); err != nil {
			return ordering.Entry{}, fmt.Errorf("listener '%s': %w", id, err)
		}
	case t.Has(AttributeAfter):
		if entry.After, err = t.String(AttributeAfter); err != nil {
			return ordering.Entry{}, fmt.Errorf("listener '%s': %w", id, err)
		}
	default:
		raw, _ := t.Value(AttributePriority)
		priority, err := ordering.ParsePriority(raw)
		if err != nil {
			return ordering.Entry{}, ordering.NewResolveError(eventName, err, id)
		}
		entry.Priority = priority
	}
	return entry, nil
}

// Compile plans defs and builds one container-backed provider per provider
// service, keyed by service id.
func (p *Pass) Compile(defs *definition.Definitions) (map[string]*provider.Container, error) {
	if p.Types == nil {
		return nil, ErrTypesRequired
	}
	if p.Locator == nil {
		return nil, ErrLocatorRequired
	}

	plans, err := p.Plan(defs)
	if err != nil {
		return nil, err
	}

	providers := make(map[string]*provider.Container, len(plans))
	for _, plan := range plans {
		table := make([]provider.ContainerEntry, 0, len(plan.Mapping))
		for _, order := range plan.Mapping {
			t, _ := p.Types.Lookup(order.Event)
			table = append(table, provider.ContainerEntry{Type: t, IDs: order.Listeners})
		}
		providers[plan.Provider] = provider.NewContainer(table, p.Locator)
	}
	return providers, nil
}
