// Package api exposes catalog search over HTTP and MCP. Both transports
// dispatch to the same kit.Endpoints.
package api

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
	"github.com/hazyhaar/touchstone-catalog/pkg/kit"
	"github.com/hazyhaar/touchstone-catalog/pkg/query"
	"github.com/hazyhaar/touchstone-catalog/pkg/search"
)

// DefaultMaxBatch bounds the number of queries in one batch request.
const DefaultMaxBatch = 100

// Service holds the engines and the endpoints built over them.
type Service struct {
	search   *search.Engine
	query    *query.Engine
	metrics  *Metrics
	pool     *ants.Pool
	workers  int
	maxBatch int
	logger   *slog.Logger
	registry *prometheus.Registry

	searchEP     kit.Endpoint
	batchEP      kit.Endpoint
	queryEP      kit.Endpoint
	resolveEP    kit.Endpoint
	variationsEP kit.Endpoint
	strategiesEP kit.Endpoint
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithBatchWorkers sets the size of the pool batch searches run on.
// Default is runtime.NumCPU().
func WithBatchWorkers(n int) Option {
	return func(s *Service) error {
		if n < 1 {
			return fmt.Errorf("batch workers must be positive, got %d", n)
		}
		s.workers = n
		return nil
	}
}

// WithMaxBatch sets how many queries one batch request may carry.
func WithMaxBatch(n int) Option {
	return func(s *Service) error {
		if n < 1 {
			return fmt.Errorf("max batch must be positive, got %d", n)
		}
		s.maxBatch = n
		return nil
	}
}

// WithRegistry registers the service metrics on reg instead of a private
// registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Service) error {
		s.registry = reg
		return nil
	}
}

// NewService wires the endpoints over the search and query engines.
// Release the batch pool with Close.
func NewService(se *search.Engine, qe *query.Engine, opts ...Option) (*Service, error) {
	if se == nil || qe == nil {
		return nil, fmt.Errorf("api: search and query engines are required")
	}
	s := &Service{
		search:   se,
		query:    qe,
		workers:  runtime.NumCPU(),
		maxBatch: DefaultMaxBatch,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	s.metrics.SetCatalogSize(se.Len())

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("batch pool: %w", err)
	}
	s.pool = pool

	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.Logging(s.logger, name), kit.Observe(name, s.metrics.observe))(ep)
	}
	s.searchEP = wrap("search", searchEndpoint(se, s.metrics))
	s.batchEP = wrap("search_batch", batchEndpoint(se, s.pool, s.maxBatch, s.metrics))
	s.queryEP = wrap("query", queryEndpoint(se, qe))
	s.resolveEP = wrap("resolve_synonym", resolveEndpoint(se))
	s.variationsEP = wrap("synonym_variations", variationsEndpoint(se))
	s.strategiesEP = wrap("strategies", strategiesEndpoint(se))
	return s, nil
}

// UpdateCatalog forwards to the search engine and refreshes the catalog
// size gauge.
func (s *Service) UpdateCatalog(entries []catalog.Entry) error {
	if err := s.search.UpdateCatalog(entries); err != nil {
		return err
	}
	s.metrics.SetCatalogSize(s.search.Len())
	return nil
}

// Metrics returns the service metrics.
func (s *Service) Metrics() *Metrics { return s.metrics }

// Close releases the batch pool.
func (s *Service) Close() {
	s.pool.Release()
}
