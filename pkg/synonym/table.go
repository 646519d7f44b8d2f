// Package synonym resolves colloquial and regional food terms to the
// canonical catalog term and the entry it points at.
package synonym

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hazyhaar/touchstone-catalog/pkg/normalize"
)

// Confidence assigned to indexed terms.
const (
	CanonicalConfidence = 1.0
	SynonymConfidence   = 0.9
)

var (
	ErrEmptyCanonical = errors.New("synonym group has no canonical term")
	ErrEmptyTarget    = errors.New("synonym group has no target id")
)

// Region is the representative locale of a synonym.
type Region struct {
	Code     string `json:"region"`
	Country  string `json:"country"`
	Language string `json:"language,omitempty"`
}

// Entry is the result of resolving one term.
type Entry struct {
	CanonicalTerm string  `json:"canonical_term"`
	TargetID      string  `json:"target_id"`
	Confidence    float64 `json:"confidence"`
	Region        *Region `json:"region,omitempty"`
}

// Term is one synonym of a group and the regions that use it.
type Term struct {
	Term    string   `yaml:"term" json:"term"`
	Regions []string `yaml:"regions" json:"regions"`
}

// Group anchors a canonical term to a catalog entry.
type Group struct {
	Canonical string `yaml:"canonical" json:"canonical"`
	TargetID  string `yaml:"target_id" json:"target_id"`
	Synonyms  []Term `yaml:"synonyms" json:"synonyms"`
}

// Table is the flat lookup built from the synonym groups. It is immutable
// after Build and safe for concurrent readers.
type Table struct {
	index      map[string][]Entry
	groups     map[string]Group
	collisions int
}

// Build fans the groups out into a lookup keyed by normalized term.
// Canonical terms are indexed first so they always keep full confidence;
// when two synonyms normalize to the same key the first one wins.
func Build(groups []Group) (*Table, error) {
	t := &Table{
		index:  make(map[string][]Entry),
		groups: make(map[string]Group, len(groups)),
	}

	for i, g := range groups {
		if normalize.Normalize(g.Canonical, normalize.Standard) == "" {
			return nil, fmt.Errorf("group %d: %w", i, ErrEmptyCanonical)
		}
		if g.TargetID == "" {
			return nil, fmt.Errorf("group %q: %w", g.Canonical, ErrEmptyTarget)
		}
		key := normalize.Normalize(g.Canonical, normalize.Standard)
		if _, exists := t.index[key]; exists {
			return nil, fmt.Errorf("canonical term %q declared twice", g.Canonical)
		}
		t.index[key] = []Entry{{
			CanonicalTerm: g.Canonical,
			TargetID:      g.TargetID,
			Confidence:    CanonicalConfidence,
		}}
		t.groups[g.TargetID] = g
	}

	var collisions int
	for _, g := range groups {
		for _, s := range g.Synonyms {
			key := normalize.Normalize(s.Term, normalize.Standard)
			if key == "" {
				continue
			}
			if _, exists := t.index[key]; exists {
				collisions++
				continue
			}
			e := Entry{
				CanonicalTerm: g.Canonical,
				TargetID:      g.TargetID,
				Confidence:    SynonymConfidence,
			}
			if len(s.Regions) > 0 {
				e.Region = newRegion(s.Regions[0])
			}
			t.index[key] = []Entry{e}
		}
	}

	if collisions > 0 {
		slog.Warn("synonym key collisions after normalization", "collisions", collisions)
	}
	t.collisions = collisions
	return t, nil
}

// Resolve returns the entries indexed under the normalized term, or nil.
// The returned slice is shared and must not be modified.
func (t *Table) Resolve(term string) []Entry {
	key := normalize.Normalize(term, normalize.Standard)
	if key == "" {
		return nil
	}
	return t.index[key]
}

// HasSynonyms reports whether the term is indexed.
func (t *Table) HasSynonyms(term string) bool {
	return len(t.Resolve(term)) > 0
}

// CanonicalTerm returns the canonical term for term.
func (t *Table) CanonicalTerm(term string) (string, bool) {
	entries := t.Resolve(term)
	if len(entries) == 0 {
		return "", false
	}
	return entries[0].CanonicalTerm, true
}

// RegionInfo returns the representative region of a synonym. Canonical
// terms carry no region.
func (t *Table) RegionInfo(term string) (*Region, bool) {
	entries := t.Resolve(term)
	if len(entries) == 0 || entries[0].Region == nil {
		return nil, false
	}
	return entries[0].Region, true
}

// Group returns the source group for a target entry id.
func (t *Table) Group(targetID string) (Group, bool) {
	g, ok := t.groups[targetID]
	return g, ok
}

// Stats summarizes the index.
type Stats struct {
	TotalTerms     int `json:"total_terms"`
	WithRegionInfo int `json:"with_region_info"`
	Collisions     int `json:"collisions"` // synonyms dropped at Build
}

// Stats counts indexed terms and how many carry region metadata.
func (t *Table) Stats() Stats {
	s := Stats{TotalTerms: len(t.index), Collisions: t.collisions}
	for _, entries := range t.index {
		for _, e := range entries {
			if e.Region != nil {
				s.WithRegionInfo++
				break
			}
		}
	}
	return s
}

// Variation is an indexed term together with what it resolves to.
type Variation struct {
	Term string `json:"term"`
	Entry
}

// Variations lists every indexed term, other than the canonical itself,
// that resolves to the given canonical term. Sorted by term.
func (t *Table) Variations(canonical string) []Variation {
	want := normalize.Normalize(canonical, normalize.Standard)
	if want == "" {
		return nil
	}
	var out []Variation
	for term, entries := range t.index {
		if term == want {
			continue
		}
		for _, e := range entries {
			if normalize.Normalize(e.CanonicalTerm, normalize.Standard) == want {
				out = append(out, Variation{Term: term, Entry: e})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}
