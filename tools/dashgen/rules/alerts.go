package rules

// AlertRules returns a PrometheusRule CR containing alert rules for the
// catalog backend and browser.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "catalog-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "catalog-alerts",
					Rules: []Rule{
						{
							Alert: "CatalogBackendDown",
							Expr:  `absent(up{job="mock-catalog"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Catalog backend is down",
								"description": "The mock-catalog job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "CatalogEmpty",
							Expr:  `catalog_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Catalog has no available products",
								"description": "The readiness probe has reported an empty catalog for more than 2 minutes.",
							},
						},
						{
							Alert: "CatalogHighErrorRate",
							Expr:  `catalog:http_errors:rate5m / catalog:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on the catalog backend",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "CatalogFetchFailures",
							Expr:  `catalog:requests_failed:rate5m / catalog:requests_dispatched:rate5m > 0.1`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Product fetches are failing",
								"description": "More than 10% of dispatched product requests failed over the last 5 minutes.",
							},
						},
						{
							Alert: "CatalogBudgetExhausted",
							Expr:  `increase(catalog_rate_limit_budget_hits_total[5m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Client request budget exhausted",
								"description": "The browser ran out of its per-window request budget. Fetches fail until the window resets.",
							},
						},
						{
							Alert: "CatalogCategoryRefreshFailing",
							Expr:  `increase(catalog_category_refresh_failures_total[15m]) > 0`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Category refresh is failing",
								"description": "Background category refreshes have failed for more than 15 minutes; stale categories are being served.",
							},
						},
					},
				},
			},
		},
	}
}
