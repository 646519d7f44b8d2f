// Package normalize canonicalizes text before it is compared, indexed or
// looked up. Every matcher in the catalog search uses the same functions so a
// query and an entry name always meet in the same form.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Policy selects a predefined normalization recipe.
type Policy int

const (
	// Standard trims, lowercases, strips accents and punctuation, and
	// collapses whitespace.
	Standard Policy = iota
	// Aggressive reduces the text to bare lowercase alphanumerics.
	Aggressive
	// Conservative only lowercases and collapses whitespace.
	Conservative
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Aggressive:
		return "aggressive"
	case Conservative:
		return "conservative"
	default:
		return "standard"
	}
}

// ParsePolicy returns the policy for the given name.
// Default is standard.
func ParsePolicy(name string) Policy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "aggressive":
		return Aggressive
	case "conservative":
		return Conservative
	default:
		return Standard
	}
}

// Options toggles the individual steps of the standard recipe.
type Options struct {
	RemoveAccents      bool
	ToLowerCase        bool
	RemoveSpecialChars bool
	TrimWhitespace     bool
}

// DefaultOptions returns the options used by the Standard policy.
func DefaultOptions() Options {
	return Options{
		RemoveAccents:      true,
		ToLowerCase:        true,
		RemoveSpecialChars: true,
		TrimWhitespace:     true,
	}
}

var (
	stripAccents  = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripSpecials = runes.Remove(runes.Predicate(func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
	}))
	stripNonAlnum = runes.Remove(runes.Predicate(func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
)

// Normalize applies a predefined policy. Empty input yields "".
func Normalize(text string, p Policy) string {
	if text == "" {
		return ""
	}
	switch p {
	case Aggressive:
		return aggressive(text)
	case Conservative:
		return collapseSpaces(strings.ToLower(strings.TrimSpace(text)))
	default:
		return WithOptions(text, DefaultOptions())
	}
}

// WithOptions runs the standard recipe with individual steps switched on or
// off. Steps run in a fixed order: trim, lowercase, strip accents, strip
// special characters, collapse whitespace. Accents go before special
// characters so "é" becomes "e" instead of disappearing.
func WithOptions(text string, o Options) string {
	if text == "" {
		return ""
	}
	s := text
	if o.TrimWhitespace {
		s = strings.TrimSpace(s)
	}
	if o.ToLowerCase {
		s = strings.ToLower(s)
	}
	if o.RemoveAccents {
		s = apply(stripAccents, s)
	}
	if o.RemoveSpecialChars {
		s = apply(stripSpecials, s)
	}
	s = collapseSpaces(s)
	if o.TrimWhitespace {
		s = strings.TrimSpace(s)
	}
	return s
}

// Terms normalizes every term with the standard recipe (or opts when given)
// and drops the ones that end up empty.
func Terms(terms []string, opts ...Options) []string {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := WithOptions(t, o); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Variations returns the distinct forms under which a term may appear:
// as typed, fully normalized, unaccented with case kept, and lowercased with
// accents kept. Order is stable and empties are dropped.
func Variations(term string) []string {
	noAccents := DefaultOptions()
	noAccents.ToLowerCase = false
	lowerOnly := DefaultOptions()
	lowerOnly.RemoveAccents = false

	candidates := []string{
		term,
		Normalize(term, Standard),
		WithOptions(term, noAccents),
		WithOptions(term, lowerOnly),
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func aggressive(text string) string {
	s := apply(stripAccents, text)
	s = strings.ToLower(s)
	return apply(stripNonAlnum, s)
}

func apply(t transform.Transformer, s string) string {
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// collapseSpaces replaces every run of Unicode whitespace with one space.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
