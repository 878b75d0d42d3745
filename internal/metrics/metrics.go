// Package metrics exposes Prometheus collectors for the accessibility
// check service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	checksTotal                *prometheus.CounterVec
	checkDurationSeconds       prometheus.Histogram
	issuesTotal                *prometheus.CounterVec
	cacheRequestsTotal         *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	sessionsInUse              prometheus.Gauge
	rateLimitDelaysSeconds     *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		checksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "a11y_checks_total",
				Help: "Total number of accessibility checks, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		checkDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "a11y_check_duration_seconds",
				Help:    "Histogram of end-to-end check durations.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		)

		issuesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "a11y_issues_total",
				Help: "Total number of issues found, labeled by category and severity.",
			},
			[]string{"category", "severity"},
		)

		cacheRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "a11y_cache_requests_total",
				Help: "Total result cache lookups, labeled by outcome.",
			},
			[]string{"outcome"},
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
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30},
			},
			[]string{"method", "route"},
		)

		sessionsInUse = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "a11y_sessions_in_use",
				Help: "Number of browser sessions currently rendering a page.",
			},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "a11y_rate_limit_delays_seconds",
				Help:    "Histogram of per-host rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"host"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCheck records one finished check run.
func ObserveCheck(site, outcome string, duration time.Duration) {
	checksTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
	checkDurationSeconds.Observe(duration.Seconds())
}

// ObserveIssues counts the issues a run produced.
func ObserveIssues(category, severity string, count int) {
	if count <= 0 {
		return
	}
	issuesTotal.WithLabelValues(category, severity).Add(float64(count))
}

// ObserveCacheLookup records a cache hit or miss.
func ObserveCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncSessionsInUse increments the in-use sessions gauge.
func IncSessionsInUse() {
	sessionsInUse.Inc()
}

// DecSessionsInUse decrements the in-use sessions gauge.
func DecSessionsInUse() {
	sessionsInUse.Dec()
}

// ObserveRateLimitDelay records the duration of a per-host rate limit wait.
func ObserveRateLimitDelay(host string, duration time.Duration) {
	rateLimitDelaysSeconds.WithLabelValues(host).Observe(duration.Seconds())
}
