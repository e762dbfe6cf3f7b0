package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ClientCalls returns a timeseries panel showing backend API calls by
// endpoint and outcome.
func ClientCalls() *timeseries.PanelBuilder {
	return series("Backend Calls", "Catalog API calls per second, by endpoint and outcome", thirdSpan,
		query("A", rate5m("catalog_client_requests_total", "endpoint", "outcome"), "{{endpoint}} {{outcome}}"),
	).
		Unit("reqps").
		Legend(tableLegend())
}

// RateLimitWaits returns a timeseries panel showing calls delayed by the
// client-side limiter.
func RateLimitWaits() *timeseries.PanelBuilder {
	return series("Rate Limit Waits", "Calls that waited for a rate limit token", thirdSpan,
		query("A", rate5m("catalog_rate_limit_waits_total"), "waits/s"),
	)
}

// BudgetHits returns a stat panel showing how often the request budget ran
// out in the past hour.
func BudgetHits() *stat.PanelBuilder {
	return gauge("Budget Hits (1h)", "Times the per-window request budget was exhausted in the last hour",
		thirdSpan, seriesHeight, `sum(increase(catalog_rate_limit_budget_hits_total[1h]))`, warnAt(1, 10)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
