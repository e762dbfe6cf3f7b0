package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-browser/internal/api/handlers"
	"github.com/donaldgifford/catalog-browser/internal/catalog"
	"github.com/donaldgifford/catalog-browser/pkg/logger"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

func newProductsAPI(t *testing.T) humatest.TestAPI {
	t.Helper()

	_, api := humatest.New(t)
	handlers.RegisterProductRoutes(api, handlers.NewProductsHandler(catalog.Default(), logger.Discard()))
	return api
}

func decodePage(t *testing.T, body []byte) handlers.ProductPageBody {
	t.Helper()

	var page handlers.ProductPageBody
	require.NoError(t, json.Unmarshal(body, &page))
	return page
}

func names(ps []domain.Product) []string {
	out := make([]string, 0, len(ps))
	for i := range ps {
		out = append(out, ps[i].Name)
	}
	return out
}

func TestProductsHandler_ListProducts(t *testing.T) {
	t.Parallel()

	api := newProductsAPI(t)

	resp := api.Get("/api/v1/products")
	require.Equal(t, http.StatusOK, resp.Code)

	var products []domain.Product
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &products))
	assert.Len(t, products, 14)
	assert.Equal(t, "Fresh Apples", products[0].Name)

	resp = api.Get("/api/v1/products?sort=price_low")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &products))
	assert.Equal(t, "Bananas", products[0].Name)
}

func TestProductsHandler_Filter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNames  []string
		wantBody   string
	}{
		{
			name:       "dairy between 2 and 20",
			query:      "?category=Dairy&min_price=2&max_price=20",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Milk", "Eggs", "Yogurt", "Butter"},
		},
		{
			name:       "repeated category",
			query:      "?category=Fruits&category=Grains",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Fresh Apples", "Bananas", "Rice"},
		},
		{
			name:       "in stock and sorted",
			query:      "?category=Bakery&in_stock=true&sort=price_desc",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Bread"},
		},
		{
			name:       "no filters returns everything available",
			query:      "",
			wantStatus: http.StatusOK,
		},
		{
			name:       "min above max",
			query:      "?min_price=10&max_price=5",
			wantStatus: http.StatusBadRequest,
			wantBody:   "min_price cannot be greater than max_price",
		},
		{
			name:       "negative price",
			query:      "?min_price=-1",
			wantStatus: http.StatusBadRequest,
			wantBody:   "min_price must not be negative",
		},
		{
			name:       "non-numeric price",
			query:      "?max_price=cheap",
			wantStatus: http.StatusBadRequest,
			wantBody:   "max_price must be a number",
		},
		{
			name:       "unknown sort",
			query:      "?sort=random",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newProductsAPI(t)

			resp := api.Get("/api/v1/filter" + tt.query)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
			}
			if tt.wantNames != nil {
				page := decodePage(t, resp.Body.Bytes())
				assert.Equal(t, tt.wantNames, names(page.Products))
				assert.Equal(t, len(tt.wantNames), page.TotalCount)
			}
		})
	}
}

func TestProductsHandler_FilterEchoesAppliedFilters(t *testing.T) {
	t.Parallel()

	api := newProductsAPI(t)

	resp := api.Get("/api/v1/filter?category=Dairy&min_price=2&sort=name")
	require.Equal(t, http.StatusOK, resp.Code)

	page := decodePage(t, resp.Body.Bytes())
	assert.Equal(t, []string{"Dairy"}, page.AppliedFilters.Categories)
	require.NotNil(t, page.AppliedFilters.MinPrice)
	assert.InDelta(t, 2.0, *page.AppliedFilters.MinPrice, 0)
	assert.Nil(t, page.AppliedFilters.MaxPrice)
	assert.Equal(t, "name", page.AppliedFilters.Sort)
}

func TestProductsHandler_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNames  []string
		wantBody   string
	}{
		{
			name:       "name match",
			query:      "?query=milk",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Milk"},
		},
		{
			name:       "category match with price bound",
			query:      "?query=dairy&max_price=4",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Milk", "Yogurt"},
		},
		{
			name:       "no match",
			query:      "?query=caviar",
			wantStatus: http.StatusOK,
			wantNames:  []string{},
		},
		{
			name:       "markup rejected",
			query:      "?query=%3Cb%3Emilk%3C%2Fb%3E",
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid characters in search query",
		},
		{
			name:       "sql fragment rejected",
			query:      "?query=milk%3B",
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid characters in search query",
		},
		{
			name:       "missing query",
			query:      "",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "blank query",
			query:      "?query=%20%20",
			wantStatus: http.StatusBadRequest,
			wantBody:   "search query cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newProductsAPI(t)

			resp := api.Get("/api/v1/search" + tt.query)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
			}
			if tt.wantNames != nil {
				page := decodePage(t, resp.Body.Bytes())
				assert.Equal(t, tt.wantNames, names(page.Products))
				assert.NotEmpty(t, page.SearchQuery)
			}
		})
	}
}

func TestProductsHandler_ListCategories(t *testing.T) {
	t.Parallel()

	api := newProductsAPI(t)

	for _, path := range []string{"/api/v1/categories", "/api/v1/filter/categories"} {
		resp := api.Get(path)
		require.Equal(t, http.StatusOK, resp.Code, path)

		var cats []string
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cats))
		assert.Equal(t,
			[]string{"Bakery", "Beverages", "Dairy", "Fruits", "Grains", "Meat", "Vegetables"},
			cats,
		)
	}
}
