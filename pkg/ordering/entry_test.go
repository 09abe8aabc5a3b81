package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *Priority
	}{
		{"absent", nil, At(0)},
		{"int", 10, At(10)},
		{"negative int64", int64(-3), At(-3)},
		{"uint8", uint8(7), At(7)},
		{"integral float from JSON", float64(42), At(42)},
		{"first", "first", AtFirst()},
		{"last", "last", AtLast()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriority(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePriority_Invalid(t *testing.T) {
	for _, value := range []any{"10", "middle", 1.5, true, []int{1}} {
		_, err := ParsePriority(value)
		require.ErrorIs(t, err, ErrInvalidPriority, "%v", value)
	}
}

func TestPriority_String(t *testing.T) {
	assert.Equal(t, "first", AtFirst().String())
	assert.Equal(t, "last", AtLast().String())
	assert.Equal(t, "-5", At(-5).String())
}

func TestEntry_Placement(t *testing.T) {
	kind, err := Entry{ID: "a"}.placement()
	require.NoError(t, err)
	assert.Equal(t, placementPriority, kind)

	kind, err = Entry{ID: "a", Before: "b"}.placement()
	require.NoError(t, err)
	assert.Equal(t, placementBefore, kind)

	kind, err = Entry{ID: "a", After: "b"}.placement()
	require.NoError(t, err)
	assert.Equal(t, placementAfter, kind)

	_, err = Entry{ID: "a", Priority: At(1), After: "b"}.placement()
	require.ErrorIs(t, err, ErrAmbiguousPlacement)
}
