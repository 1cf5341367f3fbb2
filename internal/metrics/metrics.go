// Package metrics exposes Prometheus counters for backend fetches and the
// request cache.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	inFlight      prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dash_fetches_total",
				Help: "Total number of backend requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),

		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dash_fetch_duration_seconds",
				Help:    "Backend request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dash_cache_lookups_total",
				Help: "Request cache lookups by result (hit, miss, coalesced)",
			},
			[]string{"result"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dash_cache_in_flight",
				Help: "Number of symbol fetches currently in flight",
			},
		),
	}

	reg.MustRegister(r.fetchesTotal)
	reg.MustRegister(r.fetchDuration)
	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.inFlight)

	return r
}

// RecordFetch records one completed backend request.
func (r *Registry) RecordFetch(endpoint, outcome string, seconds float64) {
	r.fetchesTotal.WithLabelValues(endpoint, outcome).Inc()
	r.fetchDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordLookup records a cache lookup result.
func (r *Registry) RecordLookup(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

// FetchStarted increments the in-flight gauge.
func (r *Registry) FetchStarted() {
	r.inFlight.Inc()
}

// FetchFinished decrements the in-flight gauge.
func (r *Registry) FetchFinished() {
	r.inFlight.Dec()
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
