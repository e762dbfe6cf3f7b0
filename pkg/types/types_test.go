package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

func TestProductPage_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantNames []string
		wantTotal int
		wantErr   bool
	}{
		{
			name:      "bare array",
			input:     `[{"name":"Milk","price":3.49,"category":"Dairy"},{"name":"Eggs","price":4.99,"category":"Dairy"}]`,
			wantNames: []string{"Milk", "Eggs"},
			wantTotal: 2,
		},
		{
			name:      "envelope with total",
			input:     `{"products":[{"name":"Bread","price":2.99,"category":"Bakery"}],"total_count":7,"search_query":"bread"}`,
			wantNames: []string{"Bread"},
			wantTotal: 7,
		},
		{
			name:      "envelope without total falls back to length",
			input:     `{"products":[{"name":"Rice","price":5.99,"category":"Grains"}]}`,
			wantNames: []string{"Rice"},
			wantTotal: 1,
		},
		{
			name:      "empty array",
			input:     `[]`,
			wantNames: []string{},
			wantTotal: 0,
		},
		{
			name:      "null body",
			input:     `null`,
			wantNames: []string{},
			wantTotal: 0,
		},
		{
			name:    "scalar is rejected",
			input:   `"oops"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var page domain.ProductPage
			err := json.Unmarshal([]byte(tt.input), &page)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			names := make([]string, 0, len(page.Products))
			for i := range page.Products {
				names = append(names, page.Products[i].Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantTotal, page.TotalCount)
		})
	}
}

func TestProduct_Defaults(t *testing.T) {
	t.Parallel()

	var p domain.Product
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Milk","price":3.49,"category":"Dairy"}`), &p))

	assert.True(t, p.IsAvailable, "missing is_available defaults to true")
	assert.Equal(t, 0, p.StockQuantity)
	assert.Empty(t, p.ImageURL)
	assert.False(t, p.InStock())

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Milk","is_available":false,"stock_quantity":3}`), &p))
	assert.False(t, p.IsAvailable)
	assert.False(t, p.InStock())
}

func TestProduct_StockLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "In Stock", (&domain.Product{StockQuantity: 11}).StockLabel())
	assert.Equal(t, "Low Stock", (&domain.Product{StockQuantity: 10}).StockLabel())
	assert.Equal(t, "Low Stock", (&domain.Product{}).StockLabel())
}

func TestSortKey_Valid(t *testing.T) {
	t.Parallel()

	for _, k := range domain.SortKeys() {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, domain.SortKey("price_low").Valid())
	assert.False(t, domain.SortKey("").Valid())
}
