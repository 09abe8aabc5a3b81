// pkg/ordering/resolver.go
// Package ordering turns declarative listener placements into one total order
// per event type.
//
// Placements are numeric priorities (higher runs first), the "first"/"last"
// sentinels, and relative "before"/"after" constraints on a sibling listener
// of the same event type. Resolution is deterministic: the same entries in the
// same declaration order always produce the same order.
package ordering

import (
	"slices"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EventOrder is the resolved listener order of one event type.
type EventOrder struct {
	Event     string   `json:"event" yaml:"event"`
	Listeners []string `json:"listeners" yaml:"listeners"`
}

// Mapping holds the resolved orders, event types in first-seen order.
type Mapping []EventOrder

// Lookup returns the listener order of event.
func (m Mapping) Lookup(event string) ([]string, bool) {
	for _, o := range m {
		if o.Event == event {
			return o.Listeners, true
		}
	}
	return nil, false
}

// Events returns the event types of the mapping in order.
func (m Mapping) Events() []string {
	events := make([]string, 0, len(m))
	for _, o := range m {
		events = append(events, o.Event)
	}
	return events
}

// Resolver resolves listener entries into a Mapping.
type Resolver struct {
	logger zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used by the resolver.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		logger: log.With().Str("component", "resolver").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves entries with a default Resolver.
func Resolve(entries []Entry) (Mapping, error) {
	return NewResolver().Resolve(entries)
}

// Resolve groups entries by event type and resolves each group.
func (r *Resolver) Resolve(entries []Entry) (Mapping, error) {
	var events []string
	byEvent := make(map[string][]Entry)
	for _, e := range entries {
		if _, seen := byEvent[e.Event]; !seen {
			events = append(events, e.Event)
		}
		byEvent[e.Event] = append(byEvent[e.Event], e)
	}

	mapping := make(Mapping, 0, len(events))
	for _, event := range events {
		order, err := r.ResolveEvent(event, byEvent[event])
		if err != nil {
			return nil, err
		}
		mapping = append(mapping, EventOrder{Event: event, Listeners: order})
	}
	return mapping, nil
}

type prioritized struct {
	id       string
	priority *Priority
	resolved int
}

type relative struct {
	id     string
	target string
	before bool
}

// ResolveEvent resolves the entries of a single event type.
//
// Entries with a priority are sorted first (descending, ties in declaration
// order), then before/after entries are spliced next to their targets pass by
// pass until all are placed.
func (r *Resolver) ResolveEvent(event string, entries []Entry) ([]string, error) {
	declared := make(map[string]bool, len(entries))
	var withPriority []prioritized
	var relatives []relative

	for _, e := range entries {
		if declared[e.ID] {
			return nil, NewResolveError(event, ErrDuplicateEntry, e.ID)
		}
		declared[e.ID] = true

		kind, err := e.placement()
		if err != nil {
			return nil, NewResolveError(event, err, e.ID)
		}

		switch kind {
		case placementBefore, placementAfter:
			relatives = append(relatives, relative{id: e.ID, target: e.relative(), before: kind == placementBefore})
		default:
			p := e.Priority
			if p == nil {
				p = At(DefaultPriority)
			}
			withPriority = append(withPriority, prioritized{id: e.ID, priority: p})
		}
	}

	var undefined []string
	for _, rel := range relatives {
		if !declared[rel.target] {
			undefined = append(undefined, rel.id)
		}
	}
	if len(undefined) > 0 {
		return nil, NewResolveError(event, ErrUndefinedRelativeTarget, undefined...)
	}

	if err := resolveSentinels(event, withPriority); err != nil {
		return nil, err
	}

	sort.SliceStable(withPriority, func(i, j int) bool {
		return withPriority[i].resolved > withPriority[j].resolved
	})

	order := make([]string, 0, len(entries))
	for _, p := range withPriority {
		order = append(order, p.id)
	}

	r.logger.Trace().Str("event", event).Strs("order", order).Int("relative", len(relatives)).Msg("Sorted prioritized listeners")

	order, err := r.splice(event, order, relatives)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().Str("event", event).Strs("order", order).Msg("Resolved listener order")
	return order, nil
}

// resolveSentinels turns first/last into concrete priorities in a single
// left-to-right pass. Each "first" ranks above every previously resolved
// priority and each "last" below.
func resolveSentinels(event string, entries []prioritized) error {
	var (
		minP, maxP int
		anchored   bool
		sentinels  []string
	)
	for _, e := range entries {
		if e.priority.Sentinel != NoSentinel {
			sentinels = append(sentinels, e.id)
			continue
		}
		if !anchored {
			minP, maxP = e.priority.Value, e.priority.Value
			anchored = true
			continue
		}
		minP = min(minP, e.priority.Value)
		maxP = max(maxP, e.priority.Value)
	}

	if len(sentinels) > 0 && !anchored {
		return NewResolveError(event, ErrNoAnchorPriority, sentinels...)
	}

	for i := range entries {
		switch entries[i].priority.Sentinel {
		case First:
			maxP++
			entries[i].resolved = maxP
		case Last:
			minP--
			entries[i].resolved = minP
		default:
			entries[i].resolved = entries[i].priority.Value
		}
	}
	return nil
}

// splice inserts relative entries next to their targets. Each pass places the
// before-entries then the after-entries whose target is already placed; a
// pass that places nothing means the remaining constraints cannot be met.
func (r *Resolver) splice(event string, order []string, pending []relative) ([]string, error) {
	placed := make(map[string]bool, len(order)+len(pending))
	for _, id := range order {
		placed[id] = true
	}

	for pass := 1; len(pending) > 0; pass++ {
		inserted := 0
		var remaining []relative

		for _, wantBefore := range []bool{true, false} {
			for _, rel := range pending {
				if rel.before != wantBefore {
					continue
				}
				if !placed[rel.target] {
					continue
				}
				at := slices.Index(order, rel.target)
				if !rel.before {
					at++
				}
				order = slices.Insert(order, at, rel.id)
				placed[rel.id] = true
				inserted++
			}
		}

		for _, rel := range pending {
			if !placed[rel.id] {
				remaining = append(remaining, rel)
			}
		}

		if inserted == 0 {
			ids := make([]string, 0, len(remaining))
			for _, rel := range remaining {
				ids = append(ids, rel.id)
			}
			r.logger.Debug().Str("event", event).Strs("unplaced", ids).Msg("No listener placed in pass")
			return nil, NewResolveError(event, ErrUnresolvableConstraint, ids...)
		}

		r.logger.Trace().Str("event", event).Int("pass", pass).Int("inserted", inserted).Msg("Completed placement pass")
		pending = remaining
	}
	return order, nil
}
