// pkg/definition/load.go
package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a definitions document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// SupportedVersions is the constraint a document version must satisfy.
const SupportedVersions = "^1"

var validate = validator.New()

// FormatFromPath picks the decoder from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads, decodes and validates the definitions file at path.
func LoadFile(path string) (*Definitions, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	defer func() { _ = f.Close() }()

	return Load(f, format)
}

// Load decodes and validates a definitions document.
func Load(r io.Reader, format Format) (*Definitions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	var defs Definitions
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&defs); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrLoadFailed, ErrUnsupportedFormat, format)
	}

	if err := defs.Validate(); err != nil {
		return nil, err
	}
	return &defs, nil
}

// Validate checks the document structure, the version range and the
// uniqueness of service ids. All problems are reported together.
func (d *Definitions) Validate() error {
	var fields []FieldError

	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fieldPath(fe.Namespace()), Reason: reasonFor(fe.Tag())})
		}
	}

	if d.Version != "" {
		if reason := checkVersion(d.Version); reason != "" {
			fields = append(fields, FieldError{Field: "version", Reason: reason})
		}
	}

	seen := make(map[string]bool, len(d.Services))
	for i, s := range d.Services {
		if s.ID == "" {
			continue
		}
		if seen[s.ID] {
			fields = append(fields, FieldError{
				Field:  fmt.Sprintf("services[%d].id", i),
				Reason: fmt.Sprintf("duplicate service id %q", s.ID),
			})
		}
		seen[s.ID] = true
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Service returns the service declared with id.
func (d *Definitions) Service(id string) (Service, bool) {
	for _, s := range d.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func checkVersion(v string) string {
	version, err := semver.NewVersion(v)
	if err != nil {
		return "must be a semantic version"
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err.Error()
	}
	if !constraint.Check(version) {
		return fmt.Sprintf("version %s is not supported (want %s)", version, SupportedVersions)
	}
	return ""
}

// fieldPath turns "Definitions.Services[0].Tags[1].Name" into
// "services[0].tags[1].name".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		rest = namespace
	}
	return strings.ToLower(rest)
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return "is required"
	default:
		return "failed " + tag + " check"
	}
}
