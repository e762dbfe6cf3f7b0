// Package panels provides Grafana dashboard panel builders for
// catalog-browser metrics.
package panels

import (
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/cog"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// Job is the scrape job label of the mock catalog backend.
const Job = "mock-catalog"

// Grid sizes on Grafana's 24-column layout.
const (
	statSpan     = 6
	statHeight   = 4
	seriesSpan   = 12
	seriesHeight = 8
	thirdSpan    = 8
	fullSpan     = 24
)

func sel() string {
	return `{job="` + Job + `"}`
}

// rate5m sums the 5m rate of a counter, optionally split by labels.
func rate5m(metric string, by ...string) string {
	expr := "sum(rate(" + metric + "[5m]))"
	if len(by) > 0 {
		expr += " by (" + strings.Join(by, ", ") + ")"
	}
	return expr
}

// quantile is a histogram_quantile over the 5m bucket rate of a histogram.
// matcher may be empty.
func quantile(q float64, histogram, matcher string) string {
	return fmt.Sprintf("histogram_quantile(%.2f, %s)", q, rate5m(histogram+"_bucket"+matcher, "le"))
}

// query is a Prometheus target against the ${datasource} variable.
func query(refID, expr, legend string) *prometheus.DataqueryBuilder {
	return prometheus.NewDataqueryBuilder().
		Expr(expr).
		LegendFormat(legend).
		RefId(refID)
}

func datasource() dashboard.DataSourceRef {
	return dashboard.DataSourceRef{
		Type: cog.ToPtr("prometheus"),
		Uid:  cog.ToPtr("${datasource}"),
	}
}

// step is a threshold that applies from at upward.
type step struct {
	at    float64
	color string
}

// thresholds starts at base and switches color at each step.
func thresholds(base string, steps ...step) cog.Builder[dashboard.ThresholdsConfig] {
	all := []dashboard.Threshold{{Color: base}}
	for _, s := range steps {
		all = append(all, dashboard.Threshold{Value: cog.ToPtr(s.at), Color: s.color})
	}
	return dashboard.NewThresholdsConfigBuilder().
		Mode(dashboard.ThresholdsModeAbsolute).
		Steps(all)
}

// upIsGreen colors a 0/1 gauge.
func upIsGreen() cog.Builder[dashboard.ThresholdsConfig] {
	return thresholds("red", step{1, "green"})
}

// warnAt colors values green, then yellow, then red.
func warnAt(yellow, red float64) cog.Builder[dashboard.ThresholdsConfig] {
	return thresholds("green", step{yellow, "yellow"}, step{red, "red"})
}

func colors(mode dashboard.FieldColorModeId) cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(mode)
}

// series is the common line panel with palette colors and targets in
// legend order.
func series(title, description string, span uint32, targets ...*prometheus.DataqueryBuilder) *timeseries.PanelBuilder {
	b := timeseries.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(datasource()).
		Height(seriesHeight).
		Span(span).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(thresholds("green")).
		ColorScheme(colors(dashboard.FieldColorModeIdPaletteClassic)).
		DrawStyle(common.GraphDrawStyleLine)
	for _, t := range targets {
		b.WithTarget(t)
	}
	return b
}

// gauge is a single-value stat panel colored by th.
func gauge(title, description string, span, height uint32, expr string, th cog.Builder[dashboard.ThresholdsConfig]) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(datasource()).
		Height(height).
		Span(span).
		WithTarget(query("A", expr, "")).
		Thresholds(th).
		ColorScheme(colors(dashboard.FieldColorModeIdThresholds))
}

// tableLegend lists mean and max under the graph.
func tableLegend() *common.VizLegendOptionsBuilder {
	return common.NewVizLegendOptionsBuilder().
		DisplayMode(common.LegendDisplayModeTable).
		Placement(common.LegendPlacementBottom).
		Calcs([]string{"mean", "max"})
}

func sortedTooltip() *common.VizTooltipOptionsBuilder {
	return common.NewVizTooltipOptionsBuilder().
		Mode(common.TooltipDisplayModeMulti).
		Sort(common.SortOrderDescending)
}
