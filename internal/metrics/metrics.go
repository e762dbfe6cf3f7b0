// Package metrics defines Prometheus metrics for catalog-browser.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// HTTP metrics, recorded by the mock backend.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPFaultsInjectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_faults_injected_total",
		Help:      "Total number of artificial failures returned by the mock backend.",
	}, []string{"path"})
)

// Health metrics.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last /healthz probe succeeded (1) or failed (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last /readyz probe succeeded (1) or failed (0).",
	})
)

// Request coordination metrics.
var (
	RequestsDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_dispatched_total",
		Help:      "Total number of product requests dispatched, by trigger (debounce, apply, refresh).",
	}, []string{"trigger"})

	RequestsSupersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_superseded_total",
		Help:      "Total number of pending requests superseded by a newer dispatch.",
	})

	ResponsesDiscardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "responses_discarded_total",
		Help:      "Total number of responses dropped because their request was no longer current.",
	})

	RequestsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_completed_total",
		Help:      "Total number of product requests that completed successfully.",
	})

	RequestsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_failed_total",
		Help:      "Total number of product requests that failed, by failure kind.",
	}, []string{"kind"})

	DebounceRestartsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "debounce_restarts_total",
		Help:      "Total number of times a pending debounce timer was cancelled by a newer change.",
	})

	ShortQueriesSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "short_queries_suppressed_total",
		Help:      "Total number of state changes not dispatched because the query was too short.",
	})

	EmptyStatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "empty_states_total",
		Help:      "Total number of times the neutral no-filter state was signalled.",
	})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of product fetches in seconds, including discarded ones.",
		Buckets:   prometheus.DefBuckets,
	})

	InFlightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "in_flight_requests",
		Help:      "Number of product fetches currently awaiting a response.",
	})
)

// Backend client metrics.
var (
	ClientRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_requests_total",
		Help:      "Total backend API calls made by the client, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	RateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_waits_total",
		Help:      "Total number of client calls that had to wait for a rate limit token.",
	})

	RateLimitBudgetHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_budget_hits_total",
		Help:      "Total number of times the per-window request budget was exhausted.",
	})
)

// Category cache metrics.
var (
	CategoryRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "category_refreshes_total",
		Help:      "Total number of category list refreshes.",
	})

	CategoryRefreshFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "category_refresh_failures_total",
		Help:      "Total number of failed category list refreshes.",
	})

	CategoriesCached = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "categories_cached",
		Help:      "Number of category names currently held in the cache.",
	})
)
