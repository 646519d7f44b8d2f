package search

import "github.com/hazyhaar/touchstone-catalog/pkg/catalog"

// Result is one scored match.
type Result struct {
	Entry     catalog.Entry `json:"entry"`
	Score     float64       `json:"score"`
	Kind      Kind          `json:"match_kind"`
	Fragments []string      `json:"matched_fragments,omitempty"`
	Query     string        `json:"query"`
}

// Entries strips the scores off a result list, keeping its order.
func Entries(results []Result) []catalog.Entry {
	out := make([]catalog.Entry, len(results))
	for i, r := range results {
		out[i] = r.Entry
	}
	return out
}
