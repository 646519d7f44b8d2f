// Package catalog holds the searchable entries and the ways they are
// loaded, validated, persisted and watched for changes.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyID     = errors.New("catalog entry has an empty id")
	ErrDuplicateID = errors.New("duplicate catalog entry id")
)

// Entry is one searchable catalog record. The fixed fields cover what the
// matchers and the common filters need; everything else lives in
// Attributes as a tree of string-keyed maps.
type Entry struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Category   string         `json:"category" yaml:"category"`
	Rating     float64        `json:"rating" yaml:"rating"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Value resolves a dot-separated path. The first segment may name a built-in
// field (id, name, category, rating); any other path walks Attributes.
// A missing segment, or a segment that is not a map, yields ok=false.
func (e Entry) Value(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	switch path {
	case "id":
		return e.ID, true
	case "name":
		return e.Name, true
	case "category":
		return e.Category, true
	case "rating":
		return e.Rating, true
	}

	var cur any = e.Attributes
	for _, seg := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// Validate checks that every entry has a non-empty, unique id.
func Validate(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d (%q): %w", i, e.Name, ErrEmptyID)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// IDs returns the entry ids in order.
func IDs(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
