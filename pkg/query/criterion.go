// Package query composes a catalog search with attribute filters and a
// final ordering.
package query

import (
	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
)

// Operator compares an entry value with a criterion value.
type Operator string

const (
	Equals   Operator = "equals"
	Contains Operator = "contains"
	GT       Operator = "gt"
	LT       Operator = "lt"
	GTE      Operator = "gte"
	LTE      Operator = "lte"
	In       Operator = "in"
	NotIn    Operator = "not_in"
)

// Criterion is one filter. Kind selects the predicate, Field the attribute
// it reads where the predicate needs one. An empty operator means equals.
type Criterion struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Field    string   `json:"field,omitempty" yaml:"field,omitempty"`
	Value    any      `json:"value" yaml:"value"`
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
}

// Direction orders sorted results.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Request describes one query. A blank SearchTerm skips the search step and
// an empty SortField keeps the current order.
type Request struct {
	SearchTerm    string      `json:"search_term,omitempty"`
	Filters       []Criterion `json:"filters,omitempty"`
	SortField     string      `json:"sort_field,omitempty"`
	SortDirection Direction   `json:"sort_direction,omitempty"`
}

// Result is the outcome of a query. AppliedFilters holds the criteria that
// actually ran, in the order they ran.
type Result struct {
	Items          []catalog.Entry `json:"items"`
	TotalCount     int             `json:"total_count"`
	AppliedFilters []Criterion     `json:"applied_filters"`
}

type criterionKey struct{ kind, field string }

// collapse keeps one criterion per (kind, field). A later criterion
// replaces an earlier one in the earlier one's position.
func collapse(filters []Criterion) []Criterion {
	pos := make(map[criterionKey]int, len(filters))
	out := make([]Criterion, 0, len(filters))
	for _, c := range filters {
		k := criterionKey{c.Kind, c.Field}
		if i, ok := pos[k]; ok {
			out[i] = c
			continue
		}
		pos[k] = len(out)
		out = append(out, c)
	}
	return out
}
