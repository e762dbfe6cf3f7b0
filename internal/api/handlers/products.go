package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/catalog-browser/internal/catalog"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// ProductsHandler serves product listing, filter, search and category
// queries from an in-memory catalog.
type ProductsHandler struct {
	catalog *catalog.Catalog
	log     *slog.Logger
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(c *catalog.Catalog, log *slog.Logger) *ProductsHandler {
	return &ProductsHandler{catalog: c, log: log}
}

// --- Input/Output types ---

// FilterParams are the query parameters shared by the listing endpoints.
// Prices are strings so that an absent bound can be told apart from zero.
type FilterParams struct {
	Category []string `query:"category,explode" doc:"Category names; repeat to select several"`
	MinPrice string   `query:"min_price"        doc:"Inclusive lower price bound"`
	MaxPrice string   `query:"max_price"        doc:"Inclusive upper price bound"`
	Sort     string   `query:"sort"             doc:"Sort key"                        enum:"default,price_asc,price_desc,name,price_low,price_high,"`
	InStock  bool     `query:"in_stock"         doc:"Only products with stock"`
}

// ListProductsInput is the input for the unfiltered listing.
type ListProductsInput struct {
	Sort string `query:"sort" doc:"Sort key" enum:"default,price_asc,price_desc,name,price_low,price_high,"`
}

// ListProductsOutput is a bare product array.
type ListProductsOutput struct {
	Body []domain.Product
}

// FilterInput is the input for the filter endpoint.
type FilterInput struct {
	FilterParams
}

// SearchInput is the input for the search endpoint.
type SearchInput struct {
	Query string `query:"query" required:"true" minLength:"1" maxLength:"200" doc:"Product name or category to search"`
	FilterParams
}

// ProductPageOutput wraps ProductPageBody.
type ProductPageOutput struct {
	Body ProductPageBody
}

// CategoriesOutput is the sorted category list.
type CategoriesOutput struct {
	Body []string
}

// --- Handlers ---

// ListProducts returns every available product.
func (h *ProductsHandler) ListProducts(
	_ context.Context,
	input *ListProductsInput,
) (*ListProductsOutput, error) {
	sortKey, err := catalog.ParseSort(input.Sort)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	products, err := h.catalog.Find(catalog.Query{Sort: sortKey})
	if err != nil {
		return nil, h.queryError("list", err)
	}
	return &ListProductsOutput{Body: products}, nil
}

// Filter returns the available products matching the category, price and
// stock filters.
func (h *ProductsHandler) Filter(
	_ context.Context,
	input *FilterInput,
) (*ProductPageOutput, error) {
	q, applied, err := buildQuery(&input.FilterParams)
	if err != nil {
		return nil, err
	}

	products, err := h.catalog.Find(q)
	if err != nil {
		return nil, h.queryError("filter", err)
	}

	out := &ProductPageOutput{}
	out.Body.Products = products
	out.Body.TotalCount = len(products)
	out.Body.AppliedFilters = applied
	return out, nil
}

// Search returns the available products whose name or category matches the
// query text, narrowed by the same filters as Filter.
func (h *ProductsHandler) Search(
	_ context.Context,
	input *SearchInput,
) (*ProductPageOutput, error) {
	text := strings.TrimSpace(input.Query)
	if text == "" {
		return nil, huma.Error400BadRequest("search query cannot be empty")
	}

	q, applied, err := buildQuery(&input.FilterParams)
	if err != nil {
		return nil, err
	}
	q.Text = text

	products, err := h.catalog.Find(q)
	if err != nil {
		return nil, h.queryError("search", err)
	}

	out := &ProductPageOutput{}
	out.Body.Products = products
	out.Body.TotalCount = len(products)
	out.Body.SearchQuery = text
	out.Body.AppliedFilters = applied
	return out, nil
}

// ListCategories returns the sorted category names.
func (h *ProductsHandler) ListCategories(
	_ context.Context,
	_ *struct{},
) (*CategoriesOutput, error) {
	return &CategoriesOutput{Body: h.catalog.Categories()}, nil
}

func (h *ProductsHandler) queryError(op string, err error) error {
	switch {
	case errors.Is(err, catalog.ErrInvalidSearch),
		errors.Is(err, catalog.ErrInvalidRange),
		errors.Is(err, catalog.ErrUnknownSort):
		return huma.Error400BadRequest(err.Error())
	default:
		h.log.Error("catalog query failed", "op", op, "error", err)
		return huma.Error500InternalServerError(op + " failed: " + err.Error())
	}
}

func buildQuery(p *FilterParams) (catalog.Query, AppliedFilters, error) {
	var (
		q       catalog.Query
		applied AppliedFilters
	)

	for _, c := range p.Category {
		if c = strings.TrimSpace(c); c != "" {
			q.Categories = append(q.Categories, c)
		}
	}

	minPrice, err := parseBound("min_price", p.MinPrice)
	if err != nil {
		return q, applied, err
	}
	maxPrice, err := parseBound("max_price", p.MaxPrice)
	if err != nil {
		return q, applied, err
	}
	q.MinPrice, q.MaxPrice = minPrice, maxPrice

	sortKey, err := catalog.ParseSort(p.Sort)
	if err != nil {
		return q, applied, huma.Error400BadRequest(err.Error())
	}
	q.Sort = sortKey
	q.InStockOnly = p.InStock

	applied = AppliedFilters{
		Categories:  q.Categories,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		InStockOnly: q.InStockOnly,
	}
	if sortKey != domain.SortDefault {
		applied.Sort = string(sortKey)
	}
	return q, applied, nil
}

func parseBound(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil //nolint:nilnil // absent bound
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, huma.Error400BadRequest(name + " must be a number")
	}
	if v < 0 {
		return nil, huma.Error400BadRequest(name + " must not be negative")
	}
	return &v, nil
}

// RegisterProductRoutes registers the catalog endpoints with the Huma API.
func RegisterProductRoutes(api huma.API, h *ProductsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Description: "Returns every available product as a bare array.",
		Tags:        []string{"products"},
		Errors:      []int{http.StatusBadRequest},
	}, h.ListProducts)

	huma.Register(api, huma.Operation{
		OperationID: "filter-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/filter",
		Summary:     "Filter products",
		Description: "Returns available products matching category, price range and stock filters.",
		Tags:        []string{"products"},
		Errors:      []int{http.StatusBadRequest},
	}, h.Filter)

	huma.Register(api, huma.Operation{
		OperationID: "search-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search products",
		Description: "Returns available products whose name or category matches the query text.",
		Tags:        []string{"products"},
		Errors:      []int{http.StatusBadRequest},
	}, h.Search)

	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"categories"},
	}, h.ListCategories)

	huma.Register(api, huma.Operation{
		OperationID: "list-filter-categories",
		Method:      http.MethodGet,
		Path:        "/api/v1/filter/categories",
		Summary:     "List categories for filtering",
		Description: "Alias of /api/v1/categories kept for older clients.",
		Tags:        []string{"categories"},
	}, h.ListCategories)
}
