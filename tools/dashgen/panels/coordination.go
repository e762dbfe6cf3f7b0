package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

const fetchDuration = "catalog_fetch_duration_seconds"

// DispatchRate returns a timeseries panel showing product requests sent, by
// what triggered them.
func DispatchRate() *timeseries.PanelBuilder {
	return series("Dispatch Rate", "Product requests dispatched per second, by trigger (debounce, apply, refresh)", seriesSpan,
		query("A", rate5m("catalog_requests_dispatched_total", "trigger"), "{{trigger}}"),
	).
		Unit("reqps").
		Legend(tableLegend()).
		Tooltip(sortedTooltip())
}

// Supersession returns a timeseries panel comparing superseded requests and
// discarded responses with completed ones.
func Supersession() *timeseries.PanelBuilder {
	return series("Supersession", "Requests replaced by a newer dispatch and stale responses that were dropped", seriesSpan,
		query("A", `catalog:requests_superseded:rate5m`, "superseded"),
		query("B", rate5m("catalog_responses_discarded_total"), "discarded"),
		query("C", `catalog:requests_completed:rate5m`, "completed"),
	).
		Unit("reqps").
		Tooltip(sortedTooltip())
}

// FetchLatency returns a timeseries panel showing product fetch duration
// percentiles as seen by the browser.
func FetchLatency() *timeseries.PanelBuilder {
	return series("Fetch Latency", "Product fetch duration percentiles, including discarded fetches", seriesSpan,
		query("A", quantile(0.50, fetchDuration, ""), "p50"),
		query("B", quantile(0.95, fetchDuration, ""), "p95"),
	).
		Unit("s").
		Legend(tableLegend())
}

// FailuresByKind returns a timeseries panel showing failed product
// requests by failure kind.
func FailuresByKind() *timeseries.PanelBuilder {
	return series("Failures by Kind", "Failed product requests per second (network, timeout, http, canceled, other)", seriesSpan,
		query("A", rate5m("catalog_requests_failed_total", "kind"), "{{kind}}"),
	).
		Unit("reqps").
		Legend(tableLegend())
}

// QueryGating returns a timeseries panel showing changes that never became
// requests: debounce restarts, short queries and empty states.
func QueryGating() *timeseries.PanelBuilder {
	return series("Query Gating", "Filter changes absorbed before dispatch", fullSpan,
		query("A", rate5m("catalog_debounce_restarts_total"), "debounce restarts"),
		query("B", rate5m("catalog_short_queries_suppressed_total"), "short queries"),
		query("C", rate5m("catalog_empty_states_total"), "empty states"),
	).
		Unit("ops").
		Tooltip(sortedTooltip())
}
