package main

import "errors"

// KnownMetrics is the set of metric names exported by the catalog browser
// and the mock backend, plus recording rule names referenced in dashboards
// and alerts.
var KnownMetrics = map[string]bool{
	// Mock backend HTTP metrics.
	"catalog_http_request_duration_seconds": true,
	"catalog_http_requests_total":           true,
	"catalog_http_faults_injected_total":    true,

	// Health metrics.
	"catalog_healthz_up": true,
	"catalog_readyz_up":  true,

	// Request coordination metrics.
	"catalog_requests_dispatched_total":      true,
	"catalog_requests_superseded_total":      true,
	"catalog_responses_discarded_total":      true,
	"catalog_requests_completed_total":       true,
	"catalog_requests_failed_total":          true,
	"catalog_debounce_restarts_total":        true,
	"catalog_short_queries_suppressed_total": true,
	"catalog_empty_states_total":             true,
	"catalog_fetch_duration_seconds":         true,
	"catalog_in_flight_requests":             true,

	// Backend client metrics.
	"catalog_client_requests_total":        true,
	"catalog_rate_limit_waits_total":       true,
	"catalog_rate_limit_budget_hits_total": true,

	// Category cache metrics.
	"catalog_category_refreshes_total":        true,
	"catalog_category_refresh_failures_total": true,
	"catalog_categories_cached":               true,

	// Recording rules.
	"catalog:http_requests:rate5m":       true,
	"catalog:http_errors:rate5m":         true,
	"catalog:requests_dispatched:rate5m": true,
	"catalog:requests_superseded:rate5m": true,
	"catalog:requests_failed:rate5m":     true,
	"catalog:requests_completed:rate5m":  true,
	"catalog:client_requests:rate5m":     true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
