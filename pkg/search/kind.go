// Package search ranks catalog entries against a free-text query by running
// a fixed set of match strategies in priority order and merging what they
// find.
package search

import (
	"errors"
	"fmt"
)

// Kind identifies the strategy that produced a result.
type Kind int

const (
	Exact Kind = iota
	Prefix
	Synonym
	Fuzzy
	Substring
)

var (
	kindNames  = [...]string{Exact: "exact", Prefix: "prefix", Synonym: "synonym", Fuzzy: "fuzzy", Substring: "substring"}
	priorities = [...]int{Exact: 100, Prefix: 90, Synonym: 85, Fuzzy: 80, Substring: 70}
)

// ShortCircuitPriority is the priority at and above which a strategy that
// finds anything ends the search.
const ShortCircuitPriority = 90

var ErrUnknownKind = errors.New("unknown match kind")

// Priority returns the fixed priority of the kind.
func (k Kind) Priority() int {
	if k < 0 || int(k) >= len(priorities) {
		return 0
	}
	return priorities[k]
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, b)
}
