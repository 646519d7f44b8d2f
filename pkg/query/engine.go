package query

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
	"github.com/hazyhaar/touchstone-catalog/pkg/search"
)

// DefaultSearchLimit caps how many ranked matches feed the filters.
const DefaultSearchLimit = 1000

var ErrNoSearcher = errors.New("query engine needs a searcher")

// Searcher ranks catalog entries for a term. *search.Engine satisfies it.
type Searcher interface {
	Search(query string, opts search.Options) []search.Result
}

// Engine runs queries: search, then filters, then sort.
type Engine struct {
	searcher   Searcher
	registry   *Registry
	searchOpts search.Options
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default filter registry.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithSearchOptions sets the options the search step runs with.
func WithSearchOptions(o search.Options) Option {
	return func(e *Engine) { e.searchOpts = o }
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates a query engine over searcher.
func New(searcher Searcher, opts ...Option) (*Engine, error) {
	if searcher == nil {
		return nil, ErrNoSearcher
	}
	e := &Engine{
		searcher:   searcher,
		registry:   DefaultRegistry(),
		searchOpts: search.Options{MaxResults: DefaultSearchLimit},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Registry returns the filter registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Execute runs req over entries. With a search term the working set becomes
// the ranked matches that are also among entries, in rank order. Filters
// then run in request order, at most one per (kind, field); unknown kinds
// are skipped and left out of AppliedFilters. entries is not modified.
func (e *Engine) Execute(entries []catalog.Entry, req Request) Result {
	working := append([]catalog.Entry(nil), entries...)

	if term := strings.TrimSpace(req.SearchTerm); term != "" {
		working = e.searchWithin(entries, term)
	}

	applied := []Criterion{}
	for _, c := range collapse(req.Filters) {
		p, ok := e.registry.Lookup(c.Kind)
		if !ok {
			e.logger.Debug("unknown filter kind skipped", "kind", c.Kind)
			continue
		}
		working = p(working, c)
		applied = append(applied, c)
	}

	if req.SortField != "" {
		sortEntries(working, req.SortField, req.SortDirection)
	}

	if working == nil {
		working = []catalog.Entry{}
	}
	return Result{
		Items:          working,
		TotalCount:     len(working),
		AppliedFilters: applied,
	}
}

func (e *Engine) searchWithin(entries []catalog.Entry, term string) []catalog.Entry {
	byID := make(map[string]int, len(entries))
	for i, en := range entries {
		byID[en.ID] = i
	}
	results := e.searcher.Search(term, e.searchOpts)
	out := make([]catalog.Entry, 0, len(results))
	for _, r := range results {
		if i, ok := byID[r.Entry.ID]; ok {
			out = append(out, entries[i])
		}
	}
	return out
}
