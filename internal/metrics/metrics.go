// Package metrics holds the Prometheus collectors for RoastMe.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roastme"

// Metrics is a registry with the application's collectors.
// Each server instance owns one so tests never share counters.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	roasts       *prometheus.CounterVec
	debits       *prometheus.CounterVec
	users        prometheus.Counter
}

// New builds a registry with process/Go collectors and the application metrics.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method", "path"},
		),
		roasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "roasts_total",
				Help:      "Roast requests by input type and outcome.",
			},
			[]string{"input", "outcome"},
		),
		debits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_debits_total",
				Help:      "Token debits after successful roasts, by result.",
			},
			[]string{"result"},
		),
		users: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "users_created_total",
				Help:      "Local user records created on first visit.",
			},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.roasts,
		m.debits,
		m.users,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one handled request. path should be a route, not a raw URL.
func (m *Metrics) ObserveHTTP(method, path string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(dur.Seconds())
}

// RoastOutcome counts a finished roast request.
func (m *Metrics) RoastOutcome(input, outcome string) {
	if m == nil {
		return
	}
	if input == "" {
		input = "unknown"
	}
	m.roasts.WithLabelValues(input, outcome).Inc()
}

// TokenDebit counts a debit attempt; result is "ok", "missing" or "error".
func (m *Metrics) TokenDebit(result string) {
	if m == nil {
		return
	}
	m.debits.WithLabelValues(result).Inc()
}

// UserCreated counts a lazily created user record.
func (m *Metrics) UserCreated() {
	if m == nil {
		return
	}
	m.users.Inc()
}
