package filter

import (
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// Listener receives the new snapshot after every mutation that changed the
// state.
type Listener func(State)

// Store owns one session's filter state. Mutations are serialized and each
// effective change is announced to subscribers in mutation order.
//
// Price policy: negative, NaN and infinite bounds are rejected with a
// ValidationError. When both bounds are set and min exceeds max, max is
// raised to min.
//
// Listeners run synchronously on the mutating goroutine and must not call
// back into the Store.
type Store struct {
	// notifyMu is held across mutate+notify so listeners observe changes
	// in the order they were applied.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore returns a store holding the default state.
func NewStore() *Store {
	return &Store{
		state:     Default(),
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetCategory selects or deselects a single category.
func (s *Store) SetCategory(name string, selected bool) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.Snapshot(), invalid("category", name, "must not be blank")
	}
	return s.apply(func(st State) State { return st.withCategory(name, selected) })
}

// SetCategories replaces the whole category selection.
func (s *Store) SetCategories(names []string) (State, error) {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return s.Snapshot(), invalid("category", n, "must not be blank")
		}
		cleaned = append(cleaned, n)
	}
	return s.apply(func(st State) State { return st.withCategories(cleaned) })
}

// SetSearchQuery sets the free-text query. Surrounding whitespace is trimmed.
func (s *Store) SetSearchQuery(text string) (State, error) {
	q := strings.TrimSpace(text)
	if n := utf8.RuneCountInString(q); n > MaxQueryLength {
		return s.Snapshot(), invalid("query", n, "longer than the allowed query length")
	}
	return s.apply(func(st State) State { return st.withQuery(q) })
}

// SetPriceRange sets both price bounds. See the Store doc for the clamping
// rule.
func (s *Store) SetPriceRange(minPrice, maxPrice Bound) (State, error) {
	if err := checkBound("min_price", minPrice); err != nil {
		return s.Snapshot(), err
	}
	if err := checkBound("max_price", maxPrice); err != nil {
		return s.Snapshot(), err
	}
	if minPrice.Set && maxPrice.Set && minPrice.Value > maxPrice.Value {
		maxPrice.Value = minPrice.Value
	}
	return s.apply(func(st State) State { return st.withPriceRange(minPrice, maxPrice) })
}

// SetSort selects the result ordering.
func (s *Store) SetSort(key domain.SortKey) (State, error) {
	if !key.Valid() {
		return s.Snapshot(), invalid("sort", key, "unknown sort key")
	}
	return s.apply(func(st State) State { return st.withSort(key) })
}

// SetInStockOnly toggles exclusion of out-of-stock products.
func (s *Store) SetInStockOnly(v bool) (State, error) {
	return s.apply(func(st State) State { return st.withInStockOnly(v) })
}

// Reset restores the default state and returns it.
func (s *Store) Reset() State {
	st, _ := s.apply(func(State) State { return Default() })
	return st
}

func (s *Store) apply(mutate func(State) State) (State, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next := mutate(prev)
	if next.Equal(prev) {
		s.mu.Unlock()
		return prev, nil
	}
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for id := range s.nextID {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next, nil
}

func checkBound(field string, b Bound) error {
	if !b.Set {
		return nil
	}
	switch {
	case math.IsNaN(b.Value) || math.IsInf(b.Value, 0):
		return invalid(field, b.Value, "must be a finite number")
	case b.Value < 0:
		return invalid(field, b.Value, "must not be negative")
	}
	return nil
}
