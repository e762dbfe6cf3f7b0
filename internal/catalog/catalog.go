// Package catalog is an in-memory product catalog used by the mock backend.
// It answers the listing, filter, search and category queries the browser
// sends.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

//go:embed products.json
var defaultProducts []byte

var (
	// ErrInvalidSearch is returned for search text containing markup or
	// SQL-like fragments.
	ErrInvalidSearch = errors.New("invalid characters in search query")
	// ErrInvalidRange is returned when the minimum price exceeds the maximum.
	ErrInvalidRange = errors.New("min_price cannot be greater than max_price")
	// ErrUnknownSort is returned for an unsupported sort key.
	ErrUnknownSort = errors.New("unknown sort key")
	// ErrEmpty is returned by Ping when no product is available.
	ErrEmpty = errors.New("catalog has no available products")
)

var unsafeSearch = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<.*?>`),
	regexp.MustCompile(`(?i)script`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`;`),
}

// Catalog holds the product list. It is read-only after construction.
type Catalog struct {
	products []domain.Product
}

// Default returns the built-in sample catalog.
func Default() *Catalog {
	c, err := Load(strings.NewReader(string(defaultProducts)))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a JSON file holding a product array.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("opening catalog fixture: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a catalog from a JSON product array.
func Load(r io.Reader) (*Catalog, error) {
	var products []domain.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	for i := range products {
		if products[i].Name == "" {
			return nil, fmt.Errorf("product %d has no name", i)
		}
		if products[i].Price < 0 || products[i].StockQuantity < 0 {
			return nil, fmt.Errorf("product %q has a negative price or stock", products[i].Name)
		}
	}
	return &Catalog{products: products}, nil
}

// Query selects products. Zero fields do not filter.
type Query struct {
	Text        string
	Categories  []string
	MinPrice    *float64
	MaxPrice    *float64
	Sort        domain.SortKey
	InStockOnly bool
}

// Available returns every product that is offered for sale.
func (c *Catalog) Available() []domain.Product {
	out := make([]domain.Product, 0, len(c.products))
	for i := range c.products {
		if c.products[i].IsAvailable {
			out = append(out, c.products[i])
		}
	}
	return out
}

// Ping reports whether the catalog can serve listings.
func (c *Catalog) Ping(_ context.Context) error {
	for i := range c.products {
		if c.products[i].IsAvailable {
			return nil
		}
	}
	return ErrEmpty
}

// Categories returns the distinct category names, sorted.
func (c *Catalog) Categories() []string {
	cats := make([]string, 0, len(c.products))
	for i := range c.products {
		cats = append(cats, c.products[i].Category)
	}
	slices.Sort(cats)
	return slices.Compact(cats)
}

// Find returns the available products matching q. A text query matches a
// product when any of its words occurs in the product name or category.
// Category matching is case-insensitive and any selected category matches.
func (c *Catalog) Find(q Query) ([]domain.Product, error) {
	if err := ValidateSearch(q.Text); err != nil {
		return nil, err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, ErrInvalidRange
	}
	sortKey := q.Sort
	if sortKey == "" {
		sortKey = domain.SortDefault
	}
	if !sortKey.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownSort, q.Sort)
	}

	terms := strings.Fields(strings.ToLower(q.Text))

	out := make([]domain.Product, 0)
	for _, p := range c.Available() {
		if !matchesText(&p, terms) || !matchesCategory(&p, q.Categories) {
			continue
		}
		if q.MinPrice != nil && p.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && p.Price > *q.MaxPrice {
			continue
		}
		if q.InStockOnly && !p.InStock() {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, sortKey)
	return out, nil
}

// ValidateSearch rejects search text containing markup or SQL-like
// fragments.
func ValidateSearch(text string) error {
	for _, re := range unsafeSearch {
		if re.MatchString(text) {
			return ErrInvalidSearch
		}
	}
	return nil
}

// ParseSort maps a sort parameter to a key. It also accepts the price_low
// and price_high spellings used by older clients.
func ParseSort(raw string) (domain.SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return domain.SortDefault, nil
	case "price_low":
		return domain.SortPriceAsc, nil
	case "price_high":
		return domain.SortPriceDesc, nil
	}
	k := domain.SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownSort, raw)
	}
	return k, nil
}

func matchesText(p *domain.Product, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	name := strings.ToLower(p.Name)
	cat := strings.ToLower(p.Category)
	for _, t := range terms {
		if strings.Contains(name, t) || strings.Contains(cat, t) {
			return true
		}
	}
	return false
}

func matchesCategory(p *domain.Product, cats []string) bool {
	if len(cats) == 0 {
		return true
	}
	for _, c := range cats {
		if strings.EqualFold(p.Category, c) {
			return true
		}
	}
	return false
}

func sortProducts(ps []domain.Product, key domain.SortKey) {
	switch key {
	case domain.SortPriceAsc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int { return cmpFloat(a.Price, b.Price) })
	case domain.SortPriceDesc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int { return cmpFloat(b.Price, a.Price) })
	case domain.SortName:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case domain.SortDefault:
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
