package search

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Fuzzy matcher tuning.
const (
	FuzzyThreshold      = 0.3 // max per-field distance
	FuzzyMinQuery       = 3   // runes
	FuzzyMaxPattern     = 32  // runes; longer queries are cut
	FuzzyDistance       = 50  // runes a word may sit from the start of a field
	FuzzyScale          = 0.7
	FuzzyMinScore       = 0.3
	fuzzyNameWeight     = 0.8
	fuzzyCategoryWeight = 0.3
	fuzzyDistanceFloor  = 0.001
)

// fuzzyField is one searchable field split into the candidates a pattern
// is compared with: the whole field plus each word and its rune offset.
type fuzzyField struct {
	words   [][]rune
	offsets []int
}

type fuzzyIndex struct {
	snap       *Snapshot
	names      []fuzzyField
	categories []fuzzyField
}

func buildFuzzyIndex(snap *Snapshot) *fuzzyIndex {
	idx := &fuzzyIndex{
		snap:       snap,
		names:      make([]fuzzyField, len(snap.fields)),
		categories: make([]fuzzyField, len(snap.fields)),
	}
	for i, f := range snap.fields {
		idx.names[i] = splitField(f.name)
		idx.categories[i] = splitField(f.category)
	}
	return idx
}

func splitField(s string) fuzzyField {
	if s == "" {
		return fuzzyField{}
	}
	ff := fuzzyField{words: [][]rune{[]rune(s)}, offsets: []int{0}}
	words := strings.Split(s, " ")
	if len(words) == 1 {
		return ff
	}
	off := 0
	for _, w := range words {
		if w != "" && off <= FuzzyDistance {
			ff.words = append(ff.words, []rune(w))
			ff.offsets = append(ff.offsets, off)
		}
		off += utf8.RuneCountInString(w) + 1
	}
	return ff
}

// distance is the best distance of pattern against the field: the edit
// distance to a candidate divided by the pattern length, plus a penalty
// growing with the candidate's offset into the field.
func (ff fuzzyField) distance(pattern []rune) float64 {
	best := math.Inf(1)
	for i, w := range ff.words {
		d := float64(osaDistance(pattern, w)) / float64(len(pattern))
		d += float64(ff.offsets[i]) / FuzzyDistance
		if d < best {
			best = d
		}
	}
	return best
}

// fuzzyStrategy is an approximate matcher over name and category. It keeps
// an index over the snapshot it was built for; the engine builds a new one
// on every catalog update.
type fuzzyStrategy struct {
	index *fuzzyIndex
}

func newFuzzyStrategy(snap *Snapshot) *fuzzyStrategy {
	return &fuzzyStrategy{index: buildFuzzyIndex(snap)}
}

func (s *fuzzyStrategy) Kind() Kind    { return Fuzzy }
func (s *fuzzyStrategy) Priority() int { return Fuzzy.Priority() }

func (s *fuzzyStrategy) FindMatches(snap *Snapshot, raw, normalized string) []Result {
	if utf8.RuneCountInString(normalized) < FuzzyMinQuery {
		return nil
	}
	pattern := []rune(truncateRunes(normalized, FuzzyMaxPattern))

	idx := s.index
	if idx.snap != snap {
		idx = buildFuzzyIndex(snap)
	}

	const total = fuzzyNameWeight + fuzzyCategoryWeight
	var out []Result
	for i, e := range snap.entries {
		combined, matched := 1.0, false
		var fragments []string

		if d := idx.names[i].distance(pattern); d <= FuzzyThreshold {
			combined *= math.Pow(math.Max(d, fuzzyDistanceFloor), fuzzyNameWeight/total)
			matched = true
			fragments = append(fragments, e.Name)
		}
		if d := idx.categories[i].distance(pattern); d <= FuzzyThreshold {
			combined *= math.Pow(math.Max(d, fuzzyDistanceFloor), fuzzyCategoryWeight/total)
			matched = true
			fragments = append(fragments, e.Category)
		}
		if !matched {
			continue
		}

		score := math.Max(0, (1-combined)*FuzzyScale)
		if score < FuzzyMinScore {
			continue
		}
		out = append(out, Result{Entry: e, Score: score, Kind: Fuzzy, Fragments: fragments, Query: raw})
	}
	return out
}

// osaDistance is the optimal string alignment distance: Levenshtein where
// swapping two adjacent runes also costs one edit.
func osaDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev2 := make([]int, len(b)+1)
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				curr[j] = min(curr[j], prev2[j-2]+1)
			}
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[len(b)]
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
