// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/catalog-browser/tools/dashgen/panels"
)

// BuildOverview constructs the Catalog Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Catalog Overview").
		Uid("catalog-overview").
		Tags([]string{"catalog", "catalog-browser"}).
		Refresh("30s").
		Time("now-1h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.InFlightStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: Mock backend HTTP.
	b.WithRow(dashboard.NewRowBuilder("Backend HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()).
		WithPanel(panels.FaultsInjected()))

	// Row 3: Request coordination.
	b.WithRow(dashboard.NewRowBuilder("Request Coordination").
		WithPanel(panels.DispatchRate()).
		WithPanel(panels.Supersession()).
		WithPanel(panels.FetchLatency()).
		WithPanel(panels.FailuresByKind()).
		WithPanel(panels.QueryGating()))

	// Row 4: Client.
	b.WithRow(dashboard.NewRowBuilder("Client").
		WithPanel(panels.ClientCalls()).
		WithPanel(panels.RateLimitWaits()).
		WithPanel(panels.BudgetHits()))

	// Row 5: Categories.
	b.WithRow(dashboard.NewRowBuilder("Categories").
		WithPanel(panels.CategoryRefreshes()).
		WithPanel(panels.CategoriesCached()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
