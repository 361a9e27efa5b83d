// Package metrics exposes Prometheus counters and histograms for the
// curation pipeline. All methods are safe on a nil *Collector.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "curator"

// Collector holds all Prometheus metrics for the service
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	// Pipeline metrics
	items          *prometheus.CounterVec
	bulkRuns       *prometheus.CounterVec
	enrichRequests *prometheus.CounterVec
	enrichDuration *prometheus.HistogramVec
	fetches        *prometheus.CounterVec
	created        *prometheus.CounterVec
}

// NewCollector creates a collector backed by its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "items_processed_total",
				Help:      "Bulk pass candidates processed, by outcome",
			},
			[]string{"outcome"},
		),
		bulkRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "bulk_runs_total",
				Help:      "Bulk passes finished, by final state",
			},
			[]string{"state"},
		),
		enrichRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "enrichment_requests_total",
				Help:      "Calls to the reasoning service, by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
		enrichDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "enrichment_request_duration_seconds",
				Help:      "Reasoning service call latency in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"endpoint"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "metadata_fetches_total",
				Help:      "Page metadata fetches, by result",
			},
			[]string{"result"},
		),
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "taxonomy_created_total",
				Help:      "Tags and folders created on demand, by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.items,
		c.bulkRuns,
		c.enrichRequests,
		c.enrichDuration,
		c.fetches,
		c.created,
	)
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, status).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ItemProcessed records one bulk pass item outcome
func (c *Collector) ItemProcessed(outcome string) {
	if c == nil {
		return
	}
	c.items.WithLabelValues(outcome).Inc()
}

// BulkRunFinished records a bulk pass reaching a terminal state
func (c *Collector) BulkRunFinished(state string) {
	if c == nil {
		return
	}
	c.bulkRuns.WithLabelValues(state).Inc()
}

// EnrichmentCall records a reasoning service call
func (c *Collector) EnrichmentCall(endpoint, result string, d time.Duration) {
	if c == nil {
		return
	}
	c.enrichRequests.WithLabelValues(endpoint, result).Inc()
	c.enrichDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// MetadataFetched records a page fetch result ("ok", "empty", "error")
func (c *Collector) MetadataFetched(result string) {
	if c == nil {
		return
	}
	c.fetches.WithLabelValues(result).Inc()
}

// TaxonomyCreated records an on-demand tag or folder creation
func (c *Collector) TaxonomyCreated(kind string) {
	if c == nil {
		return
	}
	c.created.WithLabelValues(kind).Inc()
}
