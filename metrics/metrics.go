// Package metrics provides Prometheus metrics for session and cache
// operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for SDK operations.
type Metrics struct {
	enabled bool

	// Authentication metrics
	authRequestsTotal prometheus.Counter
	authFailuresTotal *prometheus.CounterVec
	sessionState      prometheus.Gauge

	// Profile resolution metrics
	profileResolutionsTotal *prometheus.CounterVec

	// Cache metrics
	cacheEntriesTotal       *prometheus.GaugeVec
	cacheHitsTotal          *prometheus.CounterVec
	cacheMissTotal          *prometheus.CounterVec
	cacheInvalidationsTotal *prometheus.CounterVec
}

// New creates and registers Prometheus metrics.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	m.authRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostwise_auth_requests_total",
		Help: "Total successful authentication requests",
	})

	m.authFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwise_auth_failures_total",
		Help: "Total authentication failures",
	}, []string{"method"})

	m.sessionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hostwise_session_signed_in",
		Help: "Session state (0=signed out, 1=signed in)",
	})

	m.profileResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwise_profile_resolutions_total",
		Help: "Total profile resolutions by outcome",
	}, []string{"outcome"})

	m.cacheEntriesTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hostwise_cache_entries",
		Help: "Current number of entries in cache",
	}, []string{"kind"})

	m.cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwise_cache_hits_total",
		Help: "Total cache hits",
	}, []string{"kind"})

	m.cacheMissTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwise_cache_misses_total",
		Help: "Total cache misses",
	}, []string{"kind"})

	m.cacheInvalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwise_cache_invalidations_total",
		Help: "Total cache invalidations",
	}, []string{"kind"})

	return m
}

// RecordAuthSuccess records a successful authentication.
func (m *Metrics) RecordAuthSuccess(method string) {
	if !m.enabled {
		return
	}
	m.authRequestsTotal.Inc()
}

// RecordAuthFailure records a failed authentication.
func (m *Metrics) RecordAuthFailure(method string) {
	if !m.enabled {
		return
	}
	m.authFailuresTotal.WithLabelValues(method).Inc()
}

// SetSignedIn sets the session state gauge.
func (m *Metrics) SetSignedIn(signedIn bool) {
	if !m.enabled {
		return
	}
	state := 0.0
	if signedIn {
		state = 1.0
	}
	m.sessionState.Set(state)
}

// RecordProfileResolution records a resolution outcome:
// found, provisioned, absent, error.
func (m *Metrics) RecordProfileResolution(outcome string) {
	if !m.enabled {
		return
	}
	m.profileResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(kind string) {
	if !m.enabled {
		return
	}
	m.cacheHitsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(kind string) {
	if !m.enabled {
		return
	}
	m.cacheMissTotal.WithLabelValues(kind).Inc()
}

// RecordCacheInvalidation records a cache invalidation.
func (m *Metrics) RecordCacheInvalidation(kind string) {
	if !m.enabled {
		return
	}
	m.cacheInvalidationsTotal.WithLabelValues(kind).Inc()
}

// SetCacheSize sets the current cache size.
func (m *Metrics) SetCacheSize(kind string, size float64) {
	if !m.enabled {
		return
	}
	m.cacheEntriesTotal.WithLabelValues(kind).Set(size)
}
