// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and reference only known metrics.
package validate

import (
	"fmt"
	"maps"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/catalog-browser/tools/dashgen/rules"
)

// Result collects validation problems. Errors fail generation; warnings
// are reported.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether there were no errors.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Histogram and summary series share their family's name.
var seriesSuffixes = []string{"_bucket", "_sum", "_count"}

// Expr parses expr and checks each selected metric against known. where
// names the expression's origin in messages.
func Expr(r *Result, where, expr string, known map[string]bool) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		r.errorf("%s: parsing %q: %v", where, expr, err)
		return
	}

	selectors := 0
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		selectors++
		if !knownMetric(vs.Name, known) {
			r.errorf("%s: unknown metric %q", where, vs.Name)
		}
		return nil
	})
	if selectors == 0 {
		r.warnf("%s: expression %q selects no metrics", where, expr)
	}
}

func knownMetric(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range seriesSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

// Dashboard validates every Prometheus target of every panel in d,
// including panels nested in rows.
func Dashboard(d dashboard.Dashboard, known map[string]bool) *Result {
	r := &Result{}
	for _, p := range d.Panels {
		if p.Panel != nil {
			panel(r, p.Panel, known)
		}
		if p.RowPanel != nil {
			for i := range p.RowPanel.Panels {
				panel(r, &p.RowPanel.Panels[i], known)
			}
		}
	}
	return r
}

func panel(r *Result, p *dashboard.Panel, known map[string]bool) {
	title := "untitled panel"
	if p.Title != nil {
		title = *p.Title
	}
	if len(p.Targets) == 0 {
		r.warnf("panel %q has no targets", title)
		return
	}
	for _, t := range p.Targets {
		var expr string
		switch q := t.(type) {
		case prometheus.Dataquery:
			expr = q.Expr
		case *prometheus.Dataquery:
			expr = q.Expr
		default:
			r.warnf("panel %q: skipping non-Prometheus target %T", title, t)
			continue
		}
		Expr(r, "panel "+title, expr, known)
	}
}

// Rules validates the expressions of every rule in cr. Each recording rule
// name is known to the rules after it. known is not modified.
func Rules(cr rules.PrometheusRule, known map[string]bool) *Result {
	known = maps.Clone(known)
	r := &Result{}
	for _, g := range cr.Spec.Groups {
		for _, rule := range g.Rules {
			name := rule.Record
			if name == "" {
				name = rule.Alert
			}
			Expr(r, g.Name+"/"+name, rule.Expr, known)
			if rule.Record != "" {
				known[rule.Record] = true
			}
		}
	}
	return r
}
