// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linktrack"

// Metrics holds every collector the service updates
type Metrics struct {
	registry *prometheus.Registry

	Redirects       *prometheus.CounterVec
	LinksCreated    *prometheus.CounterVec
	CacheOperations *prometheus.CounterVec
	BackgroundTasks *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	LinksStored     prometheus.Gauge
}

// New creates the collectors and registers them on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirects_total",
			Help:      "Redirect lookups by outcome.",
		}, []string{"result"}),
		LinksCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_created_total",
			Help:      "Short links created, by code kind.",
		}, []string{"kind"}),
		CacheOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache operations by operation and result.",
		}, []string{"op", "result"}),
		BackgroundTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "background_tasks_total",
			Help:      "Fire-and-forget tasks by task name and result.",
		}, []string{"task", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		LinksStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "links_stored",
			Help:      "Short links currently held by the durable store.",
		}),
	}

	m.registry.MustRegister(
		m.Redirects,
		m.LinksCreated,
		m.CacheOperations,
		m.BackgroundTasks,
		m.RequestDuration,
		m.LinksStored,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Label values shared across packages
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultError    = "error"
	ResultOK       = "ok"
	ResultDropped  = "dropped"
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultExpired  = "expired"

	KindGenerated = "generated"
	KindAlias     = "alias"
)
