package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// HealthzStat returns a stat panel showing the health check status.
func HealthzStat() *stat.PanelBuilder {
	return gauge("Healthz", "Health check status (1 = ok, 0 = failing)",
		statSpan, statHeight, `catalog_healthz_up`, upIsGreen()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// ReadyzStat returns a stat panel showing whether the catalog has any
// available products.
func ReadyzStat() *stat.PanelBuilder {
	return gauge("Readyz", "Readiness check status (1 = products available, 0 = empty catalog)",
		statSpan, statHeight, `catalog_readyz_up`, upIsGreen()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// InFlightStat returns a stat panel showing product fetches awaiting a
// response.
func InFlightStat() *stat.PanelBuilder {
	return gauge("In Flight", "Product fetches currently awaiting a response",
		statSpan, statHeight, `sum(catalog_in_flight_requests)`, warnAt(5, 20)).
		GraphMode(common.BigValueGraphModeArea)
}

// UptimeStat returns a stat panel showing process uptime.
func UptimeStat() *stat.PanelBuilder {
	return gauge("Uptime", "Time since the mock backend started",
		statSpan, statHeight, `time() - process_start_time_seconds`+sel(), thresholds("green")).
		Unit("s").
		GraphMode(common.BigValueGraphModeNone)
}
