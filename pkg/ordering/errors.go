package ordering

import (
	"errors"
	"fmt"
	"strings"
)

const (
	errorCodeAmbiguousPlacement = "ORDER_AMBIGUOUS_PLACEMENT"
	errorCodeUndefinedRelative  = "ORDER_UNDEFINED_RELATIVE"
	errorCodeUnresolvable       = "ORDER_UNRESOLVABLE"
	errorCodeNoAnchor           = "ORDER_NO_ANCHOR"
	errorCodeDuplicateEntry     = "ORDER_DUPLICATE_ENTRY"
	errorCodeInvalidPriority    = "ORDER_INVALID_PRIORITY"
)

var (
	// ErrAmbiguousPlacement indicates an entry declares more than one of
	// priority, before and after.
	ErrAmbiguousPlacement = errors.New("ambiguous placement")

	// ErrUndefinedRelativeTarget indicates a before/after constraint names a
	// listener that is not registered for the same event type.
	ErrUndefinedRelativeTarget = errors.New("undefined relative target")

	// ErrUnresolvableConstraint indicates relative constraints could not all be
	// satisfied, usually because of a cycle.
	ErrUnresolvableConstraint = errors.New("unresolvable placement constraint")

	// ErrNoAnchorPriority indicates "first" or "last" was used for an event type
	// without any numeric priority to resolve against.
	ErrNoAnchorPriority = errors.New("no anchor priority")

	// ErrDuplicateEntry indicates the same listener is declared twice for one
	// event type.
	ErrDuplicateEntry = errors.New("duplicate listener entry")

	// ErrInvalidPriority indicates a priority that is neither an integer nor one
	// of the "first"/"last" sentinels.
	ErrInvalidPriority = errors.New("invalid priority")
)

// ResolveError reports a resolution failure for one event type, naming the
// offending listeners.
type ResolveError struct {
	Event     string
	Listeners []string
	Err       error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("event %q: %v: %s", e.Event, e.Err, strings.Join(e.Listeners, ", "))
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Code returns the stable error code of the failure.
func (e *ResolveError) Code() string {
	return ErrorCode(e.Err)
}

// NewResolveError builds a ResolveError for event naming the offending listeners.
func NewResolveError(event string, err error, listeners ...string) error {
	return &ResolveError{Event: event, Listeners: listeners, Err: err}
}

// ErrorCode resolves an error to its ordering error code, or "" when err is
// not an ordering error.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAmbiguousPlacement):
		return errorCodeAmbiguousPlacement
	case errors.Is(err, ErrUndefinedRelativeTarget):
		return errorCodeUndefinedRelative
	case errors.Is(err, ErrUnresolvableConstraint):
		return errorCodeUnresolvable
	case errors.Is(err, ErrNoAnchorPriority):
		return errorCodeNoAnchor
	case errors.Is(err, ErrDuplicateEntry):
		return errorCodeDuplicateEntry
	case errors.Is(err, ErrInvalidPriority):
		return errorCodeInvalidPriority
	default:
		return ""
	}
}

// ExitCode maps errors to CLI exit codes. Ordering errors are configuration
// errors and exit with 2.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ErrorCode(err) != "" {
		return 2
	}
	return 1
}

// Suggestions provides human readable guidance for CLI usage.
func Suggestions(err error) []string {
	switch ErrorCode(err) {
	case errorCodeAmbiguousPlacement:
		return []string{
			"Declare only one of priority, before or after per listener tag",
		}
	case errorCodeUndefinedRelative:
		return []string{
			"Check the spelling of the before/after target",
			"Make sure the target listens to the same event type",
		}
	case errorCodeUnresolvable:
		return []string{
			"Look for cycles such as 'a before b' with 'b before a'",
			"Anchor at least one listener of the chain with a priority",
		}
	case errorCodeNoAnchor:
		return []string{
			"Give at least one listener of the event type a numeric priority",
		}
	case errorCodeDuplicateEntry:
		return []string{
			"Remove the repeated tag for the listener",
		}
	case errorCodeInvalidPriority:
		return []string{
			"Use an integer, 'first' or 'last' as priority",
		}
	default:
		return nil
	}
}
