package definition

import (
	"errors"
	"fmt"
)

const (
	errorCodeInvalid    = "DEFINITION_INVALID"
	errorCodeLoadFailed = "DEFINITION_LOAD_FAILED"
)

var (
	// ErrInvalid indicates a definitions document failed validation.
	ErrInvalid = errors.New("invalid definitions")

	// ErrLoadFailed indicates a definitions file could not be read or parsed.
	ErrLoadFailed = errors.New("failed to load definitions")

	// ErrUnsupportedFormat indicates a file extension with no known decoder.
	ErrUnsupportedFormat = errors.New("unsupported definitions format")
)

// FieldError names a single invalid field of a definitions document.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) String() string {
	if e.Reason == "" {
		return e.Field + ": invalid"
	}
	return e.Field + ": " + e.Reason
}

// ValidationError collects the field errors of a definitions document.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Fields) {
	case 0:
		return ErrInvalid.Error()
	case 1:
		return fmt.Sprintf("%v: %s", ErrInvalid, e.Fields[0])
	default:
		return fmt.Sprintf("%v: %s (and %d more)", ErrInvalid, e.Fields[0], len(e.Fields)-1)
	}
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// ErrorCode resolves an error to its definition error code, or "" when err
// did not originate here.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalid):
		return errorCodeInvalid
	case errors.Is(err, ErrLoadFailed):
		return errorCodeLoadFailed
	default:
		return ""
	}
}

// Suggestions provides human readable guidance for CLI usage.
func Suggestions(err error) []string {
	switch ErrorCode(err) {
	case errorCodeInvalid:
		return []string{
			"Every service needs an id and every tag a name",
			"Use a version in the 1.x range or omit it",
		}
	case errorCodeLoadFailed:
		return []string{
			"Check that the file exists and is readable",
			"Use a .yaml, .yml or .json extension",
		}
	default:
		return nil
	}
}
