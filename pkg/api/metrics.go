package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazyhaar/touchstone-catalog/pkg/search"
)

const namespace = "catalog"

// Metrics are the Prometheus collectors of the service.
type Metrics struct {
	gatherer prometheus.Gatherer

	searches         *prometheus.CounterVec
	endpointDuration *prometheus.HistogramVec
	endpointErrors   *prometheus.CounterVec
	catalogEntries   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,

		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches served, by the match kind of the top result",
		}, []string{"kind"}),

		endpointDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "endpoint_duration_seconds",
			Help:      "Endpoint latency",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"endpoint"}),

		endpointErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "endpoint_errors_total",
			Help:      "Endpoint calls that returned an error",
		}, []string{"endpoint"}),

		catalogEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Entries in the current catalog snapshot",
		}),
	}

	reg.MustRegister(m.searches, m.endpointDuration, m.endpointErrors, m.catalogEntries)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// SetCatalogSize records the catalog size.
func (m *Metrics) SetCatalogSize(n int) {
	m.catalogEntries.Set(float64(n))
}

func (m *Metrics) observe(endpoint string, d time.Duration, err error) {
	m.endpointDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	if err != nil {
		m.endpointErrors.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) countSearch(results []search.Result) {
	kind := "none"
	if len(results) > 0 {
		kind = results[0].Kind.String()
	}
	m.searches.WithLabelValues(kind).Inc()
}
