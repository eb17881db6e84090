// Package metrics exposes pipeline counters on a dedicated Prometheus
// registry. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gridiron"

// Recorder holds the collectors for one process.
type Recorder struct {
	registry *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	recordsEmitted   *prometheus.CounterVec
	injuryMatches    *prometheus.CounterVec
	exportRuns       *prometheus.CounterVec
	exportDuration   prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Provider table fetches by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider fetch latency including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"dataset"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Raw table cache lookups by dataset and result.",
		}, []string{"dataset", "result"}),
		recordsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Records produced by the transform, by position.",
		}, []string{"position"}),
		injuryMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "injury_matches_total",
			Help:      "Injury join outcomes by method.",
		}, []string{"method"}),
		exportRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_runs_total",
			Help:      "Export runs by final status.",
		}, []string{"status"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Wall time of an export run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "REST requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "REST request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		r.providerRequests,
		r.providerLatency,
		r.cacheLookups,
		r.recordsEmitted,
		r.injuryMatches,
		r.exportRuns,
		r.exportDuration,
		r.httpRequests,
		r.httpLatency,
		collectors.NewGoCollector(),
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests and for callers adding their own collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordProviderRequest tracks one logical table fetch.
func (r *Recorder) RecordProviderRequest(dataset string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.providerRequests.WithLabelValues(dataset, outcome).Inc()
	r.providerLatency.WithLabelValues(dataset).Observe(duration.Seconds())
}

func (r *Recorder) RecordCacheLookup(dataset string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(dataset, result).Inc()
}

func (r *Recorder) RecordRecords(position string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.recordsEmitted.WithLabelValues(position).Add(float64(n))
}

// RecordInjuryMatches adds join outcomes; method is id, name, unmatched or collision.
func (r *Recorder) RecordInjuryMatches(method string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.injuryMatches.WithLabelValues(method).Add(float64(n))
}

func (r *Recorder) RecordExportRun(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.exportRuns.WithLabelValues(status).Inc()
	r.exportDuration.Observe(duration.Seconds())
}

func (r *Recorder) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}
