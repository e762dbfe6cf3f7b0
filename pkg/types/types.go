// Package domain defines the core catalog types shared by the client,
// the browsing core, and the mock backend.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SortKey is the ordering applied to a product listing.
type SortKey string

// Sort key constants.
const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortName      SortKey = "name"
)

// SortKeys returns every supported sort key in display order.
func SortKeys() []SortKey {
	return []SortKey{SortDefault, SortPriceAsc, SortPriceDesc, SortName}
}

// Valid reports whether k is one of the supported sort keys.
func (k SortKey) Valid() bool {
	switch k {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortName:
		return true
	default:
		return false
	}
}

// lowStockThreshold is the quantity at or below which a product is
// labelled as low stock.
const lowStockThreshold = 10

// Product is a catalog entry as returned by the backend.
type Product struct {
	ID            string  `json:"product_id,omitempty"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	StockQuantity int     `json:"stock_quantity"`
	IsAvailable   bool    `json:"is_available"`
	ImageURL      string  `json:"image_url,omitempty"`
}

// UnmarshalJSON decodes a product, treating a missing is_available as true.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	v := plain{IsAvailable: true}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Product(v)
	return nil
}

// InStock reports whether the product can currently be ordered.
func (p *Product) InStock() bool {
	return p.IsAvailable && p.StockQuantity > 0
}

// StockLabel returns the short stock status shown next to a product.
func (p *Product) StockLabel() string {
	if p.StockQuantity > lowStockThreshold {
		return "In Stock"
	}
	return "Low Stock"
}

// ProductPage is one rendered result set: the products plus the total count
// reported by the backend.
type ProductPage struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"total_count"`
}

// UnmarshalJSON accepts either a bare JSON array of products or an envelope
// of the form {"products": [...], "total_count": n}. When the envelope has no
// total_count, the number of products is used.
func (pp *ProductPage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*pp = ProductPage{Products: []Product{}}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var products []Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return fmt.Errorf("decoding product list: %w", err)
		}
		if products == nil {
			products = []Product{}
		}
		*pp = ProductPage{Products: products, TotalCount: len(products)}
		return nil
	case '{':
		var env struct {
			Products   []Product `json:"products"`
			TotalCount *int      `json:"total_count"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return fmt.Errorf("decoding product envelope: %w", err)
		}
		if env.Products == nil {
			env.Products = []Product{}
		}
		total := len(env.Products)
		if env.TotalCount != nil {
			total = *env.TotalCount
		}
		*pp = ProductPage{Products: env.Products, TotalCount: total}
		return nil
	default:
		return fmt.Errorf("unexpected product response starting with %q", trimmed[0])
	}
}
