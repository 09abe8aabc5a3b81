// pkg/ordering/entry.go
package ordering

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cast"
)

const (
	// DefaultPriority is used by entries that declare no placement.
	DefaultPriority = 0

	// PriorityFirst places a listener above every numeric priority.
	PriorityFirst = "first"
	// PriorityLast places a listener below every numeric priority.
	PriorityLast = "last"
)

// Sentinel identifies the symbolic priorities.
type Sentinel int

const (
	NoSentinel Sentinel = iota
	First
	Last
)

// Priority is either a numeric priority or a first/last sentinel.
type Priority struct {
	Value    int
	Sentinel Sentinel
}

// At returns a numeric priority.
func At(v int) *Priority {
	return &Priority{Value: v}
}

// AtFirst returns the "first" sentinel.
func AtFirst() *Priority {
	return &Priority{Sentinel: First}
}

// AtLast returns the "last" sentinel.
func AtLast() *Priority {
	return &Priority{Sentinel: Last}
}

func (p *Priority) String() string {
	switch p.Sentinel {
	case First:
		return PriorityFirst
	case Last:
		return PriorityLast
	default:
		return strconv.Itoa(p.Value)
	}
}

// ParsePriority converts a loosely typed attribute value into a Priority.
//
// Accepted values are integers (including integral floats, as produced by
// JSON decoding) and the strings "first" and "last". Numeric strings are
// rejected.
func ParsePriority(v any) (*Priority, error) {
	switch value := v.(type) {
	case nil:
		return At(DefaultPriority), nil
	case string:
		switch value {
		case PriorityFirst:
			return AtFirst(), nil
		case PriorityLast:
			return AtLast(), nil
		}
		return nil, fmt.Errorf("%w: %q (valid values are 'first', 'last', or an integer)", ErrInvalidPriority, value)
	case float32, float64:
		f := cast.ToFloat64(value)
		if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return nil, fmt.Errorf("%w: %v (valid values are 'first', 'last', or an integer)", ErrInvalidPriority, value)
		}
		return At(int(f)), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToIntE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPriority, err)
		}
		return At(n), nil
	default:
		return nil, fmt.Errorf("%w: %v (valid values are 'first', 'last', or an integer)", ErrInvalidPriority, value)
	}
}

// Entry is the resolver input for one listener of one event type.
//
// At most one of Priority, Before and After may be set. An entry with none of
// them has the default priority.
type Entry struct {
	ID       string
	Event    string
	Priority *Priority
	Before   string
	After    string
}

type placementKind int

const (
	placementPriority placementKind = iota
	placementBefore
	placementAfter
)

func (e Entry) placement() (placementKind, error) {
	declared := 0
	kind := placementPriority
	if e.Priority != nil {
		declared++
	}
	if e.Before != "" {
		declared++
		kind = placementBefore
	}
	if e.After != "" {
		declared++
		kind = placementAfter
	}
	if declared > 1 {
		return 0, ErrAmbiguousPlacement
	}
	return kind, nil
}

func (e Entry) relative() string {
	if e.Before != "" {
		return e.Before
	}
	return e.After
}
