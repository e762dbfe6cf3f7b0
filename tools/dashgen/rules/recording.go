package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "catalog-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "catalog-recording",
					Rules: []Rule{
						{
							Record: "catalog:http_requests:rate5m",
							Expr:   `sum(rate(catalog_http_requests_total[5m]))`,
						},
						{
							Record: "catalog:http_errors:rate5m",
							Expr:   `sum(rate(catalog_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "catalog:requests_dispatched:rate5m",
							Expr:   `sum(rate(catalog_requests_dispatched_total[5m]))`,
						},
						{
							Record: "catalog:requests_superseded:rate5m",
							Expr:   `sum(rate(catalog_requests_superseded_total[5m]))`,
						},
						{
							Record: "catalog:requests_failed:rate5m",
							Expr:   `sum(rate(catalog_requests_failed_total{kind!="canceled"}[5m]))`,
						},
						{
							Record: "catalog:requests_completed:rate5m",
							Expr:   `sum(rate(catalog_requests_completed_total[5m]))`,
						},
						{
							Record: "catalog:client_requests:rate5m",
							Expr:   `sum(rate(catalog_client_requests_total[5m]))`,
						},
					},
				},
			},
		},
	}
}
