package query

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrDuplicateFilter = errors.New("filter kind already registered")
	ErrEmptyKind       = errors.New("filter kind is empty")
)

// Registry maps filter kinds to predicates.
type Registry struct {
	mu         sync.RWMutex
	predicates map[string]Predicate
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{predicates: make(map[string]Predicate)}
}

// DefaultRegistry returns a registry with the catalog filters:
//
//	category   category equality
//	allergen   boolean flag under allergens.<field>
//	rating     numeric rating
//	nutrition  number under nutrition.<field>, e.g. protein.total
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.mustRegister("category", FieldEquals("category"))
	r.mustRegister("allergen", BoolAttribute("allergens"))
	r.mustRegister("rating", NumericField("rating"))
	r.mustRegister("nutrition", NestedNumeric("nutrition"))
	return r
}

// Register adds a predicate. Registering the same kind twice is an error.
func (r *Registry) Register(kind string, p Predicate) error {
	if kind == "" {
		return ErrEmptyKind
	}
	if p == nil {
		return fmt.Errorf("filter %s: nil predicate", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.predicates[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFilter, kind)
	}
	r.predicates[kind] = p
	return nil
}

func (r *Registry) mustRegister(kind string, p Predicate) {
	if err := r.Register(kind, p); err != nil {
		panic(err)
	}
}

// Lookup returns the predicate for kind.
func (r *Registry) Lookup(kind string) (Predicate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.predicates[kind]
	return p, ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.predicates))
	for k := range r.predicates {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
