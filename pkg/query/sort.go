package query

import (
	"cmp"
	"slices"

	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
)

// sortEntries orders entries by the value at field. Entries without the
// field go last in either direction; values that cannot be compared with
// each other keep their relative order.
func sortEntries(entries []catalog.Entry, field string, dir Direction) {
	slices.SortStableFunc(entries, func(a, b catalog.Entry) int {
		va, okA := a.Value(field)
		vb, okB := b.Value(field)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		c := compareValues(va, vb)
		if dir == Descending {
			return -c
		}
		return c
	})
}

// compareValues orders numbers, strings and bools among their own kind.
// Anything else compares equal.
func compareValues(a, b any) int {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return cmp.Compare(fa, fb)
		}
		return 0
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}
