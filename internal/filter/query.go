package filter

import (
	"net/url"
	"strconv"
	"strings"

	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// Query parameter keys, in the order they are emitted.
const (
	ParamQuery    = "query"
	ParamCategory = "category"
	ParamMinPrice = "min_price"
	ParamMaxPrice = "max_price"
	ParamSort     = "sort"
	ParamInStock  = "in_stock"
)

// Param is one key/value pair of an encoded query.
type Param struct {
	Key   string
	Value string
}

// Endpoint identifies which backend listing a state should be sent to.
type Endpoint int

const (
	// EndpointProducts is the unfiltered listing.
	EndpointProducts Endpoint = iota
	// EndpointFilter serves category, price, sort and stock filters.
	EndpointFilter
	// EndpointSearch serves free-text queries plus the same filters.
	EndpointSearch
)

func (e Endpoint) String() string {
	switch e {
	case EndpointFilter:
		return "filter"
	case EndpointSearch:
		return "search"
	default:
		return "products"
	}
}

// EndpointFor picks the listing for s.
func EndpointFor(s State) Endpoint {
	switch {
	case s.query != "":
		return EndpointSearch
	case s.IsZero():
		return EndpointProducts
	default:
		return EndpointFilter
	}
}

// Params returns the canonical parameter sequence for s. Filters at their
// no-op default are omitted. Categories are emitted as one repeated
// parameter per selection, in sorted order.
func Params(s State) []Param {
	params := make([]Param, 0, len(s.categories)+5)

	if s.query != "" {
		params = append(params, Param{ParamQuery, s.query})
	}
	for _, c := range s.categories {
		params = append(params, Param{ParamCategory, c})
	}
	if s.minPrice.Set {
		params = append(params, Param{ParamMinPrice, formatPrice(s.minPrice.Value)})
	}
	if s.maxPrice.Set {
		params = append(params, Param{ParamMaxPrice, formatPrice(s.maxPrice.Value)})
	}
	if k := s.Sort(); k != domain.SortDefault {
		params = append(params, Param{ParamSort, string(k)})
	}
	if s.inStockOnly {
		params = append(params, Param{ParamInStock, "true"})
	}

	return params
}

// Encode returns Params(s) as a URL query string without the leading '?'.
// Unlike url.Values.Encode the key order of Params is preserved.
func Encode(s State) string {
	var b strings.Builder
	for i, p := range Params(s) {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Values returns Params(s) as url.Values.
func Values(s State) url.Values {
	v := url.Values{}
	for _, p := range Params(s) {
		v.Add(p.Key, p.Value)
	}
	return v
}

// FromValues rebuilds a state from decoded query parameters, applying the
// same validation as the store. It is the inverse of Values.
func FromValues(v url.Values) (State, error) {
	st := NewStore()

	if cats := v[ParamCategory]; len(cats) > 0 {
		if _, err := st.SetCategories(cats); err != nil {
			return State{}, err
		}
	}
	if q := v.Get(ParamQuery); q != "" {
		if _, err := st.SetSearchQuery(q); err != nil {
			return State{}, err
		}
	}

	minPrice, err := parseBound(ParamMinPrice, v.Get(ParamMinPrice))
	if err != nil {
		return State{}, err
	}
	maxPrice, err := parseBound(ParamMaxPrice, v.Get(ParamMaxPrice))
	if err != nil {
		return State{}, err
	}
	if _, err := st.SetPriceRange(minPrice, maxPrice); err != nil {
		return State{}, err
	}

	if k := v.Get(ParamSort); k != "" {
		if _, err := st.SetSort(domain.SortKey(k)); err != nil {
			return State{}, err
		}
	}
	if s := v.Get(ParamInStock); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return State{}, invalid(ParamInStock, s, "must be a boolean")
		}
		if _, err := st.SetInStockOnly(b); err != nil {
			return State{}, err
		}
	}

	return st.Snapshot(), nil
}

// ParsePrice parses a user-entered price. Blank input is unbounded.
func ParsePrice(field, raw string) (Bound, error) {
	return parseBound(field, raw)
}

func parseBound(field, raw string) (Bound, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unbounded, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Unbounded, invalid(field, raw, "not a number")
	}
	return Price(f), nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
