package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rotation"

// Recorder collects the service metrics on its own registry
type Recorder struct {
	reg *prometheus.Registry

	requests       *prometheus.CounterVec
	weeks          *prometheus.CounterVec
	truncations    prometheus.Counter
	cacheLookups   *prometheus.CounterVec
	generationTime prometheus.Histogram
}

// New creates a Recorder with every metric registered
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		weeks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "weeks_generated_total",
			Help:      "Total weeks yielded by timelines, by origin (generated, locked).",
		}, []string{"origin"}),
		truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "truncations_total",
			Help:      "Timelines that ended before the requested number of weeks.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Schedule cache lookups by result (hit, miss).",
		}, []string{"result"}),
		generationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "generation_seconds",
			Help:      "Time spent generating one schedule.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		}),
	}

	r.reg.MustRegister(r.requests, r.weeks, r.truncations, r.cacheLookups, r.generationTime)
	return r
}

// ObserveRequest counts one handled request
func (r *Recorder) ObserveRequest(route, code string) {
	r.requests.WithLabelValues(route, code).Inc()
}

// ObserveWeek counts one yielded week
func (r *Recorder) ObserveWeek(locked bool) {
	origin := "generated"
	if locked {
		origin = "locked"
	}
	r.weeks.WithLabelValues(origin).Inc()
}

// ObserveTruncation counts a timeline that ended early
func (r *Recorder) ObserveTruncation() {
	r.truncations.Inc()
}

// ObserveCache counts a cache hit or miss
func (r *Recorder) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveGeneration records how long a schedule took to generate
func (r *Recorder) ObserveGeneration(d time.Duration) {
	r.generationTime.Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}
