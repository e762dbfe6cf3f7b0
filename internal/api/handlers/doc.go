package handlers

import domain "github.com/donaldgifford/catalog-browser/pkg/types"

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// ProductPageBody is the envelope returned by the filter and search
// endpoints.
type ProductPageBody struct {
	Products       []domain.Product `json:"products"`
	TotalCount     int              `json:"total_count"`
	SearchQuery    string           `json:"search_query,omitempty" doc:"Echo of the search text"`
	AppliedFilters AppliedFilters   `json:"applied_filters"`
}

// AppliedFilters echoes the filters the backend actually used.
type AppliedFilters struct {
	Categories  []string `json:"category,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	Sort        string   `json:"sort,omitempty"`
	InStockOnly bool     `json:"in_stock,omitempty"`
}
