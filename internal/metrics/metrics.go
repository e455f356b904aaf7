// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal                 *prometheus.CounterVec
	fetchRequestsTotal         *prometheus.CounterVec
	fetchRetriesTotal          prometheus.Counter
	fetchDurationSeconds       prometheus.Histogram
	rateLimitDelaySeconds      prometheus.Histogram
	occurrencesTotal           *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noplp_pages_total",
				Help: "Total number of pages processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noplp_fetch_requests_total",
				Help: "Total number of wiki requests, labeled by status code.",
			},
			[]string{"code"},
		)

		fetchRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "noplp_fetch_retries_total",
				Help: "Total number of wiki requests retried after a timeout.",
			},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "noplp_fetch_duration_seconds",
				Help:    "Histogram of wiki request latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		rateLimitDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "noplp_rate_limit_delay_seconds",
				Help:    "Histogram of rate gate wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		)

		occurrencesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noplp_occurrences_total",
				Help: "Total number of extracted occurrences, labeled by category.",
			},
			[]string{"category"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts one processed page. Outcome is "ok" or a failure kind.
func ObservePage(outcome string) {
	Init()
	pagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records one wiki request. A zero code means no response.
func ObserveFetch(code int, duration time.Duration) {
	Init()
	label := "none"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	fetchRequestsTotal.WithLabelValues(label).Inc()
	fetchDurationSeconds.Observe(duration.Seconds())
}

// ObserveRetry counts a timeout retry.
func ObserveRetry() {
	Init()
	fetchRetriesTotal.Inc()
}

// ObserveRateLimitDelay records the duration of a rate gate wait.
func ObserveRateLimitDelay(duration time.Duration) {
	Init()
	rateLimitDelaySeconds.Observe(duration.Seconds())
}

// ObserveOccurrence counts an extracted occurrence.
func ObserveOccurrence(category string) {
	Init()
	occurrencesTotal.WithLabelValues(category).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics of the ops server.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
