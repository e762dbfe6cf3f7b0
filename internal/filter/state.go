// Package filter holds the browsing filter state, the store that guards its
// invariants, and the builder that turns a state into backend query
// parameters.
package filter

import (
	"slices"

	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// MinQueryLength is the shortest non-empty free-text query worth sending to
// the backend.
const MinQueryLength = 2

// MaxQueryLength caps the free-text query accepted by the store.
const MaxQueryLength = 200

// Bound is an optional price bound. The zero value is unbounded.
type Bound struct {
	Value float64
	Set   bool
}

// Price returns a bound set to v.
func Price(v float64) Bound {
	return Bound{Value: v, Set: true}
}

// Unbounded is the absent bound.
var Unbounded = Bound{}

// normalized folds negative zero into zero so equal bounds encode alike.
func (b Bound) normalized() Bound {
	if b.Value == 0 {
		b.Value = 0
	}
	return b
}

// State is an immutable snapshot of the filter selections. Values are only
// produced by Store and Default; copies can be shared freely.
type State struct {
	categories  []string
	query       string
	minPrice    Bound
	maxPrice    Bound
	sort        domain.SortKey
	inStockOnly bool
}

// Default returns the state with no active filters.
func Default() State {
	return State{sort: domain.SortDefault}
}

// Categories returns the selected categories in lexicographic order.
func (s State) Categories() []string {
	return slices.Clone(s.categories)
}

// HasCategory reports whether name is selected.
func (s State) HasCategory(name string) bool {
	_, found := slices.BinarySearch(s.categories, name)
	return found
}

// Query returns the trimmed free-text query.
func (s State) Query() string {
	return s.query
}

// MinPrice returns the lower price bound.
func (s State) MinPrice() Bound {
	return s.minPrice
}

// MaxPrice returns the upper price bound.
func (s State) MaxPrice() Bound {
	return s.maxPrice
}

// Sort returns the selected sort key.
func (s State) Sort() domain.SortKey {
	if s.sort == "" {
		return domain.SortDefault
	}
	return s.sort
}

// InStockOnly reports whether out-of-stock products are excluded.
func (s State) InStockOnly() bool {
	return s.inStockOnly
}

// IsZero reports whether no filter is active.
func (s State) IsZero() bool {
	return len(s.categories) == 0 &&
		s.query == "" &&
		!s.minPrice.Set &&
		!s.maxPrice.Set &&
		s.Sort() == domain.SortDefault &&
		!s.inStockOnly
}

// Equal reports whether s and o hold the same selections.
func (s State) Equal(o State) bool {
	return slices.Equal(s.categories, o.categories) &&
		s.query == o.query &&
		s.minPrice == o.minPrice &&
		s.maxPrice == o.maxPrice &&
		s.Sort() == o.Sort() &&
		s.inStockOnly == o.inStockOnly
}

// String returns the canonical encoded query, which doubles as a readable
// form for logs.
func (s State) String() string {
	return Encode(s)
}

// The with* helpers return modified copies; the receiver is never touched.

func (s State) withCategory(name string, selected bool) State {
	i, found := slices.BinarySearch(s.categories, name)
	switch {
	case selected && !found:
		s.categories = slices.Insert(slices.Clone(s.categories), i, name)
	case !selected && found:
		s.categories = slices.Delete(slices.Clone(s.categories), i, i+1)
	}
	return s
}

func (s State) withCategories(names []string) State {
	c := slices.Clone(names)
	slices.Sort(c)
	s.categories = slices.Compact(c)
	if len(s.categories) == 0 {
		s.categories = nil
	}
	return s
}

func (s State) withQuery(q string) State {
	s.query = q
	return s
}

func (s State) withPriceRange(minPrice, maxPrice Bound) State {
	s.minPrice = minPrice.normalized()
	s.maxPrice = maxPrice.normalized()
	return s
}

func (s State) withSort(k domain.SortKey) State {
	s.sort = k
	return s
}

func (s State) withInStockOnly(v bool) State {
	s.inStockOnly = v
	return s
}
