package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CategoryRefreshes returns a bar panel showing hourly category list
// refreshes and failures.
func CategoryRefreshes() *timeseries.PanelBuilder {
	return series("Category Refreshes", "Background category list refreshes and failed attempts", fullSpan-thirdSpan,
		query("A", `sum(increase(catalog_category_refreshes_total[1h]))`, "refreshes"),
		query("B", `sum(increase(catalog_category_refresh_failures_total[1h]))`, "failures"),
	).
		Tooltip(sortedTooltip()).
		DrawStyle(common.GraphDrawStyleBars)
}

// CategoriesCached returns a stat panel showing the cached category count.
func CategoriesCached() *stat.PanelBuilder {
	return gauge("Categories Cached", "Category names currently held in the cache",
		thirdSpan, seriesHeight, `max(catalog_categories_cached)`, upIsGreen()).
		GraphMode(common.BigValueGraphModeNone)
}
