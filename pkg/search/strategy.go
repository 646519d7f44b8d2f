package search

import (
	"strings"
	"unicode/utf8"
)

// Strategy scores a catalog snapshot against one query. raw is the query as
// typed (trimmed); normalized is its standard normalization and is never
// empty.
type Strategy interface {
	Kind() Kind
	Priority() int
	FindMatches(snap *Snapshot, raw, normalized string) []Result
}

// MinSubstringQuery is the shortest normalized query, in runes, the
// substring strategy will look for.
const MinSubstringQuery = 3

type exactStrategy struct{}

func (exactStrategy) Kind() Kind    { return Exact }
func (exactStrategy) Priority() int { return Exact.Priority() }

// FindMatches scores a full-name match 1.0 and a full-category match 0.95.
// The category is only considered when the name did not match.
func (exactStrategy) FindMatches(snap *Snapshot, raw, normalized string) []Result {
	var out []Result
	for i, f := range snap.fields {
		e := snap.entries[i]
		switch {
		case f.name == normalized:
			out = append(out, Result{Entry: e, Score: 1.0, Kind: Exact, Fragments: []string{e.Name}, Query: raw})
		case f.category == normalized:
			out = append(out, Result{Entry: e, Score: 0.95, Kind: Exact, Fragments: []string{e.Category}, Query: raw})
		}
	}
	return out
}

type prefixStrategy struct{}

func (prefixStrategy) Kind() Kind    { return Prefix }
func (prefixStrategy) Priority() int { return Prefix.Priority() }

func (prefixStrategy) FindMatches(snap *Snapshot, raw, normalized string) []Result {
	qLen := utf8.RuneCountInString(normalized)
	var out []Result
	for i, f := range snap.fields {
		e := snap.entries[i]
		var (
			score    float64
			fragment string
		)
		if strings.HasPrefix(f.name, normalized) {
			score = 0.85 + 0.1*ratio(qLen, f.nameLen)
			fragment = e.Name
		}
		if strings.HasPrefix(f.category, normalized) && 0.75 > score {
			score = 0.75
			fragment = e.Category
		}
		if score > 0 {
			out = append(out, Result{Entry: e, Score: score, Kind: Prefix, Fragments: []string{fragment}, Query: raw})
		}
	}
	return out
}

type substringStrategy struct{}

func (substringStrategy) Kind() Kind    { return Substring }
func (substringStrategy) Priority() int { return Substring.Priority() }

func (substringStrategy) FindMatches(snap *Snapshot, raw, normalized string) []Result {
	qLen := utf8.RuneCountInString(normalized)
	if qLen < MinSubstringQuery {
		return nil
	}
	var out []Result
	for i, f := range snap.fields {
		e := snap.entries[i]
		var (
			score    float64
			fragment string
		)
		if pos := runeIndex(f.name, normalized); pos >= 0 {
			score = (0.6 + 0.2*ratio(qLen, f.nameLen)) * (1 - 0.3*ratio(pos, f.nameLen))
			fragment = e.Name
		}
		if strings.Contains(f.category, normalized) && 0.4 > score {
			score = 0.4
			fragment = e.Category
		}
		if score > 0 {
			out = append(out, Result{Entry: e, Score: score, Kind: Substring, Fragments: []string{fragment}, Query: raw})
		}
	}
	return out
}

// ratio returns a/b, or 0 when b is 0.
func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// runeIndex is strings.Index measured in runes.
func runeIndex(s, sub string) int {
	i := strings.Index(s, sub)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:i])
}
