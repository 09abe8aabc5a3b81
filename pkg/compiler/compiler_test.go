package compiler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/relay/pkg/container"
	"github.com/vulntor/relay/pkg/definition"
	"github.com/vulntor/relay/pkg/dispatch"
	"github.com/vulntor/relay/pkg/event"
	"github.com/vulntor/relay/pkg/ordering"
)

type orderPlaced struct {
	trail []string
}

type orderShipped struct {
	trail []string
}

func load(t *testing.T, doc string) *definition.Definitions {
	t.Helper()
	defs, err := definition.Load(strings.NewReader(doc), definition.FormatYAML)
	require.NoError(t, err)
	return defs
}

func recorder(name string) event.Listener {
	return event.NewListener(func(_ context.Context, e any) error {
		switch ev := e.(type) {
		case *orderPlaced:
			ev.trail = append(ev.trail, name)
		case *orderShipped:
			ev.trail = append(ev.trail, name)
		}
		return nil
	})
}

const shopYAML = `
services:
  - id: provider
    tags:
      - name: listener_provider
  - id: audit
    tags:
      - name: event_listener
        event: placed
        priority: first
      - name: event_listener
        event: shipped
  - id: mailer
    tags:
      - name: event_listener
        event: placed
        priority: 10
  - id: stock
    tags:
      - name: event_listener
        event: placed
        before: mailer
  - id: invoice
    tags:
      - name: event_listener
        event: placed
        after: mailer
  - id: tracking
    tags:
      - name: event_listener
        event: shipped
        priority: last
`

func TestPass_Plan(t *testing.T) {
	plans, err := NewPass().Plan(load(t, shopYAML))
	require.NoError(t, err)

	require.Len(t, plans, 1)
	plan := plans[0]
	assert.Equal(t, "provider", plan.Provider)
	assert.Equal(t, DefaultListenerTag, plan.ListenerTag)
	assert.Equal(t, []string{"placed", "shipped"}, plan.Mapping.Events())

	placed, ok := plan.Mapping.Lookup("placed")
	require.True(t, ok)
	assert.Equal(t, []string{"audit", "stock", "mailer", "invoice"}, placed)

	shipped, _ := plan.Mapping.Lookup("shipped")
	assert.Equal(t, []string{"audit", "tracking"}, shipped)

	_, ok = plans.Lookup("provider")
	assert.True(t, ok)
}

func TestPass_Plan_CustomTags(t *testing.T) {
	doc := `
services:
  - id: admin_provider
    tags:
      - name: admin.provider
        listener_tag: admin.listener
  - id: public_provider
    tags:
      - name: admin.provider
  - id: a
    tags:
      - name: admin.listener
        event: placed
  - id: b
    tags:
      - name: event_listener
        event: placed
`
	plans, err := NewPass(WithProviderTag("admin.provider")).Plan(load(t, doc))
	require.NoError(t, err)
	require.Len(t, plans, 2)

	admin, _ := plans.Lookup("admin_provider")
	assert.Equal(t, ordering.Mapping{{Event: "placed", Listeners: []string{"a"}}}, admin.Mapping)

	public, _ := plans.Lookup("public_provider")
	assert.Equal(t, ordering.Mapping{{Event: "placed", Listeners: []string{"b"}}}, public.Mapping)
}

func TestPass_Plan_NoProvider(t *testing.T) {
	plans, err := NewPass().Plan(load(t, "services:\n  - id: a\n"))
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestPass_Plan_Errors(t *testing.T) {
	const head = "services:\n  - id: p\n    tags: [{name: listener_provider}]\n"

	tests := []struct {
		name string
		body string
		want error
		code string
	}{
		{
			name: "missing event",
			body: "  - id: a\n    tags: [{name: event_listener, priority: 1}]\n",
			want: ErrMissingEvent,
			code: errorCodeMissingEvent,
		},
		{
			name: "ambiguous placement",
			body: "  - id: a\n    tags: [{name: event_listener, event: placed, priority: 1, before: b}]\n" +
				"  - id: b\n    tags: [{name: event_listener, event: placed}]\n",
			want: ordering.ErrAmbiguousPlacement,
			code: "ORDER_AMBIGUOUS_PLACEMENT",
		},
		{
			name: "invalid priority",
			body: "  - id: a\n    tags: [{name: event_listener, event: placed, priority: middle}]\n",
			want: ordering.ErrInvalidPriority,
			code: "ORDER_INVALID_PRIORITY",
		},
		{
			name: "undefined relative",
			body: "  - id: a\n    tags: [{name: event_listener, event: placed, after: ghost}]\n",
			want: ordering.ErrUndefinedRelativeTarget,
			code: "ORDER_UNDEFINED_RELATIVE",
		},
		{
			name: "cycle",
			body: "  - id: a\n    tags: [{name: event_listener, event: placed, before: b}]\n" +
				"  - id: b\n    tags: [{name: event_listener, event: placed, before: a}]\n",
			want: ordering.ErrUnresolvableConstraint,
			code: "ORDER_UNRESOLVABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPass().Plan(load(t, head+tt.body))
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.code, ErrorCode(err))
			assert.Equal(t, 2, ExitCode(err))
			assert.NotEmpty(t, Suggestions(err))
		})
	}
}

func TestPass_Plan_AmbiguousNamesListener(t *testing.T) {
	doc := "services:\n  - id: p\n    tags: [{name: listener_provider}]\n" +
		"  - id: a\n    tags: [{name: event_listener, event: placed, before: b, after: b}]\n" +
		"  - id: b\n    tags: [{name: event_listener, event: placed}]\n"

	_, err := NewPass().Plan(load(t, doc))

	var rerr *ordering.ResolveError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "placed", rerr.Event)
	assert.Equal(t, []string{"a"}, rerr.Listeners)
}

func TestPass_Plan_ChecksTypesAndServices(t *testing.T) {
	types, err := event.NewTypeRegistry(event.NamedType[*orderPlaced]("placed"))
	require.NoError(t, err)

	_, err = NewPass(WithTypes(types)).Plan(load(t, shopYAML))
	require.ErrorIs(t, err, ErrUnknownEventType)
	assert.Contains(t, err.Error(), "shipped")

	registry := container.NewRegistry()
	require.NoError(t, registry.Set("audit", recorder("audit")))

	_, err = NewPass(WithLocator(registry)).Plan(load(t, shopYAML))
	require.ErrorIs(t, err, ErrMissingService)
	assert.Equal(t, errorCodeMissingService, ErrorCode(err))
}

func TestPass_Compile_RequiresTypesAndLocator(t *testing.T) {
	defs := load(t, shopYAML)

	_, err := NewPass().Compile(defs)
	require.ErrorIs(t, err, ErrTypesRequired)

	types, err := event.NewTypeRegistry()
	require.NoError(t, err)
	_, err = NewPass(WithTypes(types)).Compile(defs)
	require.ErrorIs(t, err, ErrLocatorRequired)
	assert.Equal(t, 1, ExitCode(err))
}

func TestPass_Compile_Dispatch(t *testing.T) {
	types, err := event.NewTypeRegistry(
		event.NamedType[*orderPlaced]("placed"),
		event.NamedType[*orderShipped]("shipped"),
	)
	require.NoError(t, err)

	registry := container.NewRegistry()
	built := 0
	for _, id := range []string{"audit", "mailer", "stock", "invoice", "tracking"} {
		require.NoError(t, registry.Register(id, func() (event.Listener, error) {
			built++
			return recorder(id), nil
		}))
	}

	providers, err := NewPass(WithTypes(types), WithLocator(registry)).Compile(load(t, shopYAML))
	require.NoError(t, err)
	require.Contains(t, providers, "provider")
	assert.Equal(t, 0, built, "listeners are built on first dispatch")

	d := dispatch.New(providers["provider"])

	placed := &orderPlaced{}
	_, err = d.Dispatch(context.Background(), placed)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit", "stock", "mailer", "invoice"}, placed.trail)

	shipped := &orderShipped{}
	_, err = d.Dispatch(context.Background(), shipped)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit", "tracking"}, shipped.trail)
	assert.Equal(t, 5, built)
}

func TestErrorCode_FallsThrough(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, "", ErrorCode(errors.New("io")))
	assert.Equal(t, "DEFINITION_INVALID", ErrorCode(definition.ErrInvalid))
	assert.Equal(t, 0, ExitCode(nil))
	assert.Nil(t, Suggestions(errors.New("io")))
}

func TestPass_Plan_DefaultListenerTagOption(t *testing.T) {
	doc := `
services:
  - id: provider
    tags:
      - name: listener_provider
  - id: a
    tags:
      - name: custom.listener
        event: placed
`
	plans, err := NewPass(WithListenerTag("custom.listener")).Plan(load(t, doc))
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "custom.listener", plans[0].ListenerTag)
	assert.Equal(t, ordering.Mapping{{Event: "placed", Listeners: []string{"a"}}}, plans[0].Mapping)
}

func TestExitCode_LoadFailure(t *testing.T) {
	_, err := definition.LoadFile("missing.yaml")
	require.Error(t, err)
	assert.Equal(t, "DEFINITION_LOAD_FAILED", ErrorCode(err))
	assert.Equal(t, 1, ExitCode(err))
	assert.Equal(t, 2, ExitCode(definition.ErrInvalid))
}
