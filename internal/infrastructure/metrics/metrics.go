// Package metrics exposes Prometheus collectors for the desk API, backend
// calls, session renewal, board refreshes and reconciliation upserts.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeApplied = "applied"
	OutcomeStale   = "stale"
)

// Collectors owns a private registry so tests and multiple instances never
// collide on the default one. A nil *Collectors is valid and records nothing.
type Collectors struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	tokenRefreshes  *prometheus.CounterVec
	boardRefreshes  *prometheus.CounterVec
	upserts         *prometheus.CounterVec
}

// New registers every collector under namespace
func New(namespace string) *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Requests served by the desk API.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Latency of desk API requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		backendRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "requests_total",
				Help:      "Requests sent to the order backend.",
			},
			[]string{"method", "route", "status"},
		),
		backendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "request_duration_seconds",
				Help:      "Latency of order backend requests, including session renewal.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		tokenRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "token_refreshes_total",
				Help:      "Access token renewals by outcome.",
			},
			[]string{"outcome"},
		),
		boardRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "board",
				Name:      "refreshes_total",
				Help:      "Order list fetches by outcome: applied, stale or failure.",
			},
			[]string{"outcome"},
		),
		upserts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reconcile",
				Name:      "upserts_total",
				Help:      "Daily target upserts by outcome.",
			},
			[]string{"outcome"},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.backendRequests,
		c.backendDuration,
		c.tokenRefreshes,
		c.boardRefreshes,
		c.upserts,
	)
	return c
}

// Registry returns the private registry
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTPRequest records one request served by the desk API
func (c *Collectors) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveBackendCall records one backend request. status is 0 for transport errors.
func (c *Collectors) ObserveBackendCall(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.backendRequests.WithLabelValues(method, route, label).Inc()
	c.backendDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TokenRefresh records a renewal attempt
func (c *Collectors) TokenRefresh(ok bool) {
	if c == nil {
		return
	}
	c.tokenRefreshes.WithLabelValues(outcome(ok)).Inc()
}

// BoardRefresh records a fetch outcome
func (c *Collectors) BoardRefresh(result string) {
	if c == nil {
		return
	}
	c.boardRefreshes.WithLabelValues(result).Inc()
}

// Upsert records one daily target write
func (c *Collectors) Upsert(ok bool) {
	if c == nil {
		return
	}
	c.upserts.WithLabelValues(outcome(ok)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
