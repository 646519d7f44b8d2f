package search

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
	"github.com/hazyhaar/touchstone-catalog/pkg/normalize"
	"github.com/hazyhaar/touchstone-catalog/pkg/synonym"
)

var ErrNoSynonyms = errors.New("search engine needs a synonym table")

// Engine owns the current catalog snapshot and the strategy chain built
// over it. Searches run against a consistent snapshot; UpdateCatalog builds
// the replacement, fuzzy index included, before swapping it in.
type Engine struct {
	mu       sync.RWMutex
	state    *state
	synonyms *synonym.Table
	logger   *slog.Logger
}

type state struct {
	snap  *Snapshot
	chain *Chain
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New builds an engine over entries.
func New(entries []catalog.Entry, table *synonym.Table, opts ...Option) (*Engine, error) {
	if table == nil {
		return nil, ErrNoSynonyms
	}
	e := &Engine{synonyms: table, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if err := e.UpdateCatalog(entries); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateCatalog replaces the catalog. Searches already running finish on
// the previous snapshot.
func (e *Engine) UpdateCatalog(entries []catalog.Entry) error {
	if e.synonyms == nil {
		panic("search: Engine used without a synonym table; build it with New")
	}
	if err := catalog.Validate(entries); err != nil {
		return fmt.Errorf("update catalog: %w", err)
	}
	next := e.build(entries)

	e.mu.Lock()
	e.state = next
	e.mu.Unlock()

	e.logger.Info("catalog updated", "entries", next.snap.Len())
	return nil
}

func (e *Engine) build(entries []catalog.Entry) *state {
	snap := NewSnapshot(entries)
	chain := NewChain(e.logger,
		exactStrategy{},
		prefixStrategy{},
		&synonymStrategy{table: e.synonyms},
		newFuzzyStrategy(snap),
		substringStrategy{},
	)
	return &state{snap: snap, chain: chain}
}

func (e *Engine) current() *state {
	e.mu.RLock()
	s := e.state
	e.mu.RUnlock()
	if s == nil {
		panic("search: Engine used without a catalog; build it with New")
	}
	return s
}

// Search ranks the catalog against query. A query that is blank, or that
// normalizes to nothing, matches nothing.
func (e *Engine) Search(query string, opts Options) []Result {
	s := e.current()
	raw := strings.TrimSpace(query)
	normalized := normalize.Normalize(raw, normalize.Standard)
	if normalized == "" {
		return []Result{}
	}
	return s.chain.Run(s.snap, raw, normalized, opts)
}

// Strategies lists the strategies in execution order.
func (e *Engine) Strategies() []Info {
	return e.current().chain.Strategies()
}

// Catalog returns the current snapshot.
func (e *Engine) Catalog() *Snapshot {
	return e.current().snap
}

// Len returns the size of the current catalog.
func (e *Engine) Len() int {
	return e.current().snap.Len()
}

// Synonyms returns the table the engine resolves regional terms with.
func (e *Engine) Synonyms() *synonym.Table {
	return e.synonyms
}
