package search

import (
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/touchstone-catalog/pkg/normalize"
	"github.com/hazyhaar/touchstone-catalog/pkg/synonym"
)

// MinSynonymSubstring is the shortest canonical term, in runes, that may
// match inside a longer entry name.
const MinSynonymSubstring = 4

// resolver looks a raw term up in a synonym index. *synonym.Table
// implements it.
type resolver interface {
	Resolve(term string) []synonym.Entry
}

type synonymStrategy struct {
	table resolver
}

func (s *synonymStrategy) Kind() Kind    { return Synonym }
func (s *synonymStrategy) Priority() int { return Synonym.Priority() }

// FindMatches resolves the query through the synonym table and scores every
// entry against each resolved canonical term. The target id match wins over
// any text comparison.
func (s *synonymStrategy) FindMatches(snap *Snapshot, raw, normalized string) []Result {
	resolved := s.table.Resolve(raw)
	if len(resolved) == 0 {
		return nil
	}

	var out []Result
	byID := make(map[string]int)
	for _, syn := range resolved {
		canonical := normalize.Normalize(syn.CanonicalTerm, normalize.Standard)
		cLen := utf8.RuneCountInString(canonical)
		trace := raw + " → " + syn.CanonicalTerm

		for i, f := range snap.fields {
			e := snap.entries[i]
			var (
				score    float64
				fragment string
			)
			switch {
			case e.ID == syn.TargetID:
				score = syn.Confidence * 0.98
				fragment = e.Name + " (ID match)"
			case f.name == canonical:
				score = syn.Confidence * 0.95
				fragment = e.Name
			case strings.HasPrefix(f.name, canonical):
				score = syn.Confidence * (0.85 + 0.1*ratio(cLen, f.nameLen))
				fragment = e.Name
			case cLen >= MinSynonymSubstring && runeIndex(f.name, canonical) >= 0:
				pos := runeIndex(f.name, canonical)
				score = syn.Confidence * (0.7 + 0.15*ratio(cLen, f.nameLen)) * (1 - 0.3*ratio(pos, f.nameLen))
				fragment = e.Name
			case f.category != "" && f.category == canonical:
				score = syn.Confidence * 0.8
				fragment = e.Category
			default:
				continue
			}

			j, seen := byID[e.ID]
			if !seen {
				byID[e.ID] = len(out)
				out = append(out, Result{
					Entry:     e,
					Score:     score,
					Kind:      Synonym,
					Fragments: []string{fragment, trace},
					Query:     raw,
				})
				continue
			}
			if score > out[j].Score {
				out[j].Score = score
			}
			if !slices.Contains(out[j].Fragments, trace) {
				out[j].Fragments = append(out[j].Fragments, trace)
			}
		}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}
