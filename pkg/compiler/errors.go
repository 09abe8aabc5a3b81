package compiler

import (
	"errors"

	"github.com/vulntor/relay/pkg/definition"
	"github.com/vulntor/relay/pkg/ordering"
)

const (
	errorCodeMissingEvent   = "COMPILE_MISSING_EVENT"
	errorCodeUnknownEvent   = "COMPILE_UNKNOWN_EVENT"
	errorCodeMissingService = "COMPILE_MISSING_SERVICE"
)

// ErrorCode resolves err to a stable code covering compiler, ordering and
// definition errors. It returns "" for anything else.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingEvent):
		return errorCodeMissingEvent
	case errors.Is(err, ErrUnknownEventType):
		return errorCodeUnknownEvent
	case errors.Is(err, ErrMissingService):
		return errorCodeMissingService
	}
	if code := ordering.ErrorCode(err); code != "" {
		return code
	}
	return definition.ErrorCode(err)
}

// ExitCode maps errors to CLI exit codes: 0 on success, 2 for definition
// and ordering problems in the document, 1 otherwise. A file that cannot be
// read or parsed exits with 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, definition.ErrLoadFailed):
		return 1
	case ErrorCode(err) != "":
		return 2
	default:
		return 1
	}
}

// Suggestions provides human readable guidance for CLI usage.
func Suggestions(err error) []string {
	switch ErrorCode(err) {
	case "":
		return nil
	case errorCodeMissingEvent:
		return []string{"Add an 'event' attribute to the listener tag"}
	case errorCodeUnknownEvent:
		return []string{
			"Check the spelling of the event type",
			"Register the event type before compiling",
		}
	case errorCodeMissingService:
		return []string{"Register a listener under the tagged service id"}
	}
	if s := ordering.Suggestions(err); s != nil {
		return s
	}
	return definition.Suggestions(err)
}
