// pkg/definition/types.go
// Package definition loads listener metadata from YAML or JSON files.
//
// A definitions file lists services. Each service carries tags; a tag has a
// name and free-form attributes. The compiler interprets the tags: provider
// tags declare listener providers and listener tags declare which event a
// listener handles and where it is placed.
//
//	version: "1.0"
//	services:
//	  - id: listener_provider
//	    tags:
//	      - name: listener_provider
//	        listener_tag: event_listener
//	  - id: audit_listener
//	    tags:
//	      - name: event_listener
//	        event: "*orders.Placed"
//	        priority: first
package definition

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/spf13/cast"
)

// Definitions is the root of a definitions file.
type Definitions struct {
	Version  string    `json:"version,omitempty" yaml:"version,omitempty"`
	Services []Service `json:"services" yaml:"services" validate:"required,dive"`
}

// Service is a listener or provider declaration.
type Service struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Tags []Tag  `json:"tags,omitempty" yaml:"tags,omitempty" validate:"dive"`
}

// Tag attaches a named set of attributes to a service.
type Tag struct {
	Name       string         `json:"name" yaml:"name" validate:"required"`
	Attributes map[string]any `json:"-" yaml:",inline"`
}

// Has reports whether the attribute key is declared.
func (t Tag) Has(key string) bool {
	_, ok := t.Attributes[key]
	return ok
}

// Value returns the raw attribute value.
func (t Tag) Value(key string) (any, bool) {
	v, ok := t.Attributes[key]
	return v, ok
}

// String returns the attribute as a string.
func (t Tag) String(key string) (string, error) {
	v, ok := t.Attributes[key]
	if !ok {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("attribute %q: %w", key, err)
	}
	return s, nil
}

// TagsNamed returns the service tags called name, in declaration order.
func (s Service) TagsNamed(name string) []Tag {
	var tags []Tag
	for _, t := range s.Tags {
		if t.Name == name {
			tags = append(tags, t)
		}
	}
	return tags
}

// MarshalJSON flattens attributes next to the tag name.
func (t Tag) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Attributes)+1)
	maps.Copy(out, t.Attributes)
	out["name"] = t.Name
	return json.Marshal(out)
}

// UnmarshalJSON reads the tag name and keeps every other key as an attribute.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	name, err := cast.ToStringE(raw["name"])
	if err != nil {
		return fmt.Errorf("tag name: %w", err)
	}
	delete(raw, "name")
	t.Name = name
	t.Attributes = raw
	return nil
}
