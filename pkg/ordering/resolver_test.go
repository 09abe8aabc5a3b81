// pkg/ordering/resolver_test.go
package ordering

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventA = "app.EventA"
	eventB = "app.EventB"
)

func prioritiesFixture() []Entry {
	return []Entry{
		{ID: "listener_a", Event: eventA, Priority: At(10)},
		{ID: "listener_b", Event: eventA},
		{ID: "listener_c", Event: eventA, Priority: At(0)},
		{ID: "listener_d", Event: eventA, Priority: AtLast()},
		{ID: "listener_e", Event: eventA, Priority: AtFirst()},
		{ID: "listener_f", Event: eventA, Priority: AtLast()},
		{ID: "listener_g", Event: eventA, Priority: At(-10)},
		{ID: "listener_h", Event: eventA, Priority: At(-10)},
		{ID: "listener_i", Event: eventA, Priority: AtFirst()},
		{ID: "listener_j", Event: eventA, Priority: At(0)},
		{ID: "listener_j", Event: eventB, Priority: At(0)},
		{ID: "listener_k", Event: eventB, After: "listener_j"},
		{ID: "listener_l", Event: eventB, Before: "listener_j"},
	}
}

func TestResolve_Priorities(t *testing.T) {
	mapping, err := Resolve(prioritiesFixture())
	require.NoError(t, err)

	assert.Equal(t, Mapping{
		{
			Event: eventA,
			Listeners: []string{
				"listener_i", // first 2nd
				"listener_e", // first 1st
				"listener_a", // 10
				"listener_b", // 0 1st
				"listener_c", // 0 2nd
				"listener_j", // 0 3rd
				"listener_g", // -10 1st
				"listener_h", // -10 2nd
				"listener_d", // last 1st
				"listener_f", // last 2nd
			},
		},
		{
			Event:     eventB,
			Listeners: []string{"listener_l", "listener_j", "listener_k"},
		},
	}, mapping)
	assert.Equal(t, []string{eventA, eventB}, mapping.Events())
}

func TestResolve_Deterministic(t *testing.T) {
	first, err := Resolve(prioritiesFixture())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Resolve(prioritiesFixture())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveEvent_EqualPrioritiesKeepDeclarationOrder(t *testing.T) {
	order, err := NewResolver().ResolveEvent(eventA, []Entry{
		{ID: "z", Priority: At(5)},
		{ID: "m", Priority: At(5)},
		{ID: "a", Priority: At(5)},
		{ID: "low", Priority: At(1)},
		{ID: "b", Priority: At(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "m", "a", "b", "low"}, order)
}

func TestResolveEvent_SentinelsRankAroundNumericPriorities(t *testing.T) {
	order, err := NewResolver().ResolveEvent(eventA, []Entry{
		{ID: "top", Priority: AtFirst()},
		{ID: "high", Priority: At(100)},
		{ID: "bottom", Priority: AtLast()},
		{ID: "low", Priority: At(-100)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "high", "low", "bottom"}, order)
}

func TestResolveEvent_RelativePlacement(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    []string
	}{
		{
			name: "before the head",
			entries: []Entry{
				{ID: "a", Priority: At(1)},
				{ID: "b"},
				{ID: "x", Before: "a"},
			},
			want: []string{"x", "a", "b"},
		},
		{
			name: "after the tail",
			entries: []Entry{
				{ID: "a", Priority: At(1)},
				{ID: "b"},
				{ID: "x", After: "b"},
			},
			want: []string{"a", "b", "x"},
		},
		{
			name: "after in the middle",
			entries: []Entry{
				{ID: "a", Priority: At(1)},
				{ID: "b"},
				{ID: "x", After: "a"},
			},
			want: []string{"a", "x", "b"},
		},
		{
			name: "chain resolved over several passes",
			entries: []Entry{
				{ID: "c", After: "b"},
				{ID: "b", After: "a"},
				{ID: "a", Priority: At(0)},
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "before a relative entry",
			entries: []Entry{
				{ID: "y", Before: "x"},
				{ID: "x", Before: "a"},
				{ID: "a"},
			},
			want: []string{"y", "x", "a"},
		},
		{
			name: "before entries placed ahead of after entries in a pass",
			entries: []Entry{
				{ID: "a"},
				{ID: "after_a", After: "a"},
				{ID: "before_a", Before: "a"},
			},
			want: []string{"before_a", "a", "after_a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewResolver().ResolveEvent(eventA, tt.entries)
			require.NoError(t, err)
			assert.Equal(t, tt.want, order)
		})
	}
}

func TestResolveEvent_Errors(t *testing.T) {
	tests := []struct {
		name      string
		entries   []Entry
		wantErr   error
		listeners []string
	}{
		{
			name: "cycle",
			entries: []Entry{
				{ID: "anchor"},
				{ID: "a", Before: "b"},
				{ID: "b", Before: "a"},
			},
			wantErr:   ErrUnresolvableConstraint,
			listeners: []string{"a", "b"},
		},
		{
			name: "self reference",
			entries: []Entry{
				{ID: "anchor"},
				{ID: "a", After: "a"},
			},
			wantErr:   ErrUnresolvableConstraint,
			listeners: []string{"a"},
		},
		{
			name: "undefined relative",
			entries: []Entry{
				{ID: "a"},
				{ID: "b", After: "missing"},
			},
			wantErr:   ErrUndefinedRelativeTarget,
			listeners: []string{"b"},
		},
		{
			name: "priority and before",
			entries: []Entry{
				{ID: "a"},
				{ID: "b", Priority: At(3), Before: "a"},
			},
			wantErr:   ErrAmbiguousPlacement,
			listeners: []string{"b"},
		},
		{
			name: "before and after",
			entries: []Entry{
				{ID: "a"},
				{ID: "b", Before: "a", After: "a"},
			},
			wantErr:   ErrAmbiguousPlacement,
			listeners: []string{"b"},
		},
		{
			name: "sentinels without anchor",
			entries: []Entry{
				{ID: "a", Priority: AtFirst()},
				{ID: "b", Priority: AtLast()},
			},
			wantErr:   ErrNoAnchorPriority,
			listeners: []string{"a", "b"},
		},
		{
			name: "duplicate",
			entries: []Entry{
				{ID: "a"},
				{ID: "a", Priority: At(2)},
			},
			wantErr:   ErrDuplicateEntry,
			listeners: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver().ResolveEvent(eventA, tt.entries)
			require.ErrorIs(t, err, tt.wantErr)

			var resolveErr *ResolveError
			require.True(t, errors.As(err, &resolveErr))
			assert.Equal(t, eventA, resolveErr.Event)
			assert.Equal(t, tt.listeners, resolveErr.Listeners)
			assert.NotEmpty(t, resolveErr.Code())
		})
	}
}

func TestResolveEvent_OnlyRelativeEntriesAreUnresolvable(t *testing.T) {
	_, err := NewResolver().ResolveEvent(eventA, []Entry{
		{ID: "a", Before: "b"},
		{ID: "b", After: "a"},
	})
	require.ErrorIs(t, err, ErrUnresolvableConstraint)
}

func TestResolveEvent_Empty(t *testing.T) {
	order, err := NewResolver().ResolveEvent(eventA, nil)
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestResolve_StopsAtFirstFailingEvent(t *testing.T) {
	_, err := Resolve([]Entry{
		{ID: "a", Event: eventA},
		{ID: "b", Event: eventB, After: "a"},
	})
	require.ErrorIs(t, err, ErrUndefinedRelativeTarget)
	assert.Contains(t, err.Error(), eventB)
}

func TestMapping_Lookup(t *testing.T) {
	m := Mapping{{Event: eventA, Listeners: []string{"a"}}}

	got, ok := m.Lookup(eventA)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got)

	_, ok = m.Lookup(eventB)
	assert.False(t, ok)
}
