package search

import (
	"unicode/utf8"

	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
	"github.com/hazyhaar/touchstone-catalog/pkg/normalize"
)

// Snapshot is an immutable view of a catalog together with the normalized
// name and category of every entry, computed once so strategies don't
// renormalize the catalog on every query.
type Snapshot struct {
	entries []catalog.Entry
	fields  []fields
}

type fields struct {
	name        string
	nameLen     int
	category    string
	categoryLen int
}

// NewSnapshot normalizes the entries. The slice is copied.
func NewSnapshot(entries []catalog.Entry) *Snapshot {
	s := &Snapshot{
		entries: append([]catalog.Entry(nil), entries...),
		fields:  make([]fields, len(entries)),
	}
	for i, e := range entries {
		name := normalize.Normalize(e.Name, normalize.Standard)
		category := normalize.Normalize(e.Category, normalize.Standard)
		s.fields[i] = fields{
			name:        name,
			nameLen:     utf8.RuneCountInString(name),
			category:    category,
			categoryLen: utf8.RuneCountInString(category),
		}
	}
	return s
}

// Entries returns the catalog entries. The slice must not be modified.
func (s *Snapshot) Entries() []catalog.Entry { return s.entries }

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.entries) }
