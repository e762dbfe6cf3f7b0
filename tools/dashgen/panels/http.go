package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

const httpDuration = "catalog_http_request_duration_seconds"

// RequestRate returns a timeseries panel showing the mock backend request
// rate.
func RequestRate() *timeseries.PanelBuilder {
	return series("Request Rate", "HTTP requests per second served by the mock backend", seriesSpan,
		query("A", `catalog:http_requests:rate5m`, "req/s"),
	).
		Unit("reqps").
		Legend(tableLegend()).
		Tooltip(sortedTooltip())
}

// LatencyPercentiles returns a timeseries panel showing p50, p95, and p99
// HTTP request latencies, including injected latency.
func LatencyPercentiles() *timeseries.PanelBuilder {
	return series("Latency Percentiles", "HTTP request duration percentiles", seriesSpan,
		query("A", quantile(0.50, httpDuration, sel()), "p50"),
		query("B", quantile(0.95, httpDuration, sel()), "p95"),
		query("C", quantile(0.99, httpDuration, sel()), "p99"),
	).
		Unit("s").
		Legend(tableLegend()).
		Tooltip(sortedTooltip())
}

// ErrorRate returns a timeseries panel showing the HTTP 5xx error rate
// as a percentage.
func ErrorRate() *timeseries.PanelBuilder {
	return series("Error Rate %", "HTTP 5xx error rate as percentage of total requests", seriesSpan,
		query("A", `catalog:http_errors:rate5m / catalog:http_requests:rate5m * 100`, "error %"),
	).
		Unit("percent").
		Thresholds(warnAt(1, 5)).
		ColorScheme(colors(dashboard.FieldColorModeIdThresholds))
}

// FaultsInjected returns a timeseries panel showing artificial failures by
// path.
func FaultsInjected() *timeseries.PanelBuilder {
	return series("Injected Faults", "Artificial 500s returned by the mock backend, by path", seriesSpan,
		query("A", rate5m("catalog_http_faults_injected_total"+sel(), "path"), "{{path}}"),
	).
		Unit("reqps")
}
