package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/donaldgifford/catalog-browser/internal/filter"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

func mustState(t *testing.T, fn func(*filter.Store) error) filter.State {
	t.Helper()
	s := filter.NewStore()
	require.NoError(t, fn(s))
	return s.Snapshot()
}

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "network", netErr.FailureKind())
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Error retrieving products"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	page, err := c.ListProducts(context.Background())
	require.Error(t, err)
	assert.Nil(t, page)
	assert.Contains(t, err.Error(), "API error (HTTP 500)")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, `{"detail":"Error retrieving products"}`, httpErr.Body)
	assert.Equal(t, "http", httpErr.FailureKind())
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.ListCategories(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
	assert.Equal(t, "timeout", netErr.FailureKind())
}

func TestClient_FetchProducts_Routing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		state     func(*filter.Store) error
		wantPath  string
		wantQuery string
	}{
		{
			name:     "default state lists everything",
			state:    func(*filter.Store) error { return nil },
			wantPath: "/api/v1/products",
		},
		{
			name: "category and price go to filter",
			state: func(s *filter.Store) error {
				if _, err := s.SetCategory("Dairy", true); err != nil {
					return err
				}
				_, err := s.SetPriceRange(filter.Price(2), filter.Price(20))
				return err
			},
			wantPath:  "/api/v1/filter",
			wantQuery: "category=Dairy&min_price=2&max_price=20",
		},
		{
			name: "text query goes to search",
			state: func(s *filter.Store) error {
				if _, err := s.SetSearchQuery("whole milk"); err != nil {
					return err
				}
				_, err := s.SetCategories([]string{"Dairy", "Bakery"})
				return err
			},
			wantPath:  "/api/v1/search",
			wantQuery: "query=whole+milk&category=Bakery&category=Dairy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			}))
			defer srv.Close()

			c := New(srv.URL)
			page, err := c.FetchProducts(context.Background(), mustState(t, tt.state))
			require.NoError(t, err)
			assert.Empty(t, page.Products)
		})
	}
}

func TestClient_FetchProducts_ResponseShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantCount int
		wantTotal int
	}{
		{
			name:      "bare array",
			body:      `[{"product_id":"p1","name":"Milk","price":3.49,"category":"Dairy","stock_quantity":50}]`,
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "envelope",
			body:      `{"products":[{"name":"Milk","price":3.49,"category":"Dairy"}],"total_count":4,"applied_filters":{}}`,
			wantCount: 1,
			wantTotal: 4,
		},
		{
			name:      "empty body",
			body:      ``,
			wantCount: 0,
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			page, err := New(srv.URL).ListProducts(context.Background())
			require.NoError(t, err)
			assert.Len(t, page.Products, tt.wantCount)
			assert.Equal(t, tt.wantTotal, page.TotalCount)
		})
	}
}

func TestClient_ListCategories(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/categories", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]string{"Bakery", "Dairy", "Fruits"})
	}))
	defer srv.Close()

	cats, err := New(srv.URL).ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bakery", "Dairy", "Fruits"}, cats)
}

func TestClient_WithPaths(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/cats", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithPaths(Paths{Categories: "/v2/cats"}))
	assert.Equal(t, srv.URL, c.BaseURL())
	assert.Equal(t, "/api/v1/search", c.paths.Search, "unset paths keep defaults")

	_, err := c.ListCategories(context.Background())
	require.NoError(t, err)
}

func TestClient_RateLimiterBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithRateLimiter(NewRateLimiter(1000, 10, WithBudget(2, time.Hour))))

	for range 2 {
		_, err := c.ListProducts(context.Background())
		require.NoError(t, err)
	}
	_, err := c.ListProducts(context.Background())
	require.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Equal(t, int32(2), calls.Load(), "throttled call never reaches the backend")
}

func TestClient_Tracing(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"products":[],"total_count":0}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTracerProvider(tp))
	st := mustState(t, func(s *filter.Store) error {
		_, err := s.SetSearchQuery("bread")
		return err
	})
	_, err := c.FetchProducts(context.Background(), st)
	require.NoError(t, err)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "catalog.FetchProducts")
	assert.GreaterOrEqual(t, len(names), 2, "transport span recorded alongside the client span")
}

func TestClient_FetchProducts_ErrorSpanAndWrap(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Invalid search query", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := New(srv.URL).FetchProducts(context.Background(), mustState(t, func(s *filter.Store) error {
		_, err := s.SetSearchQuery("<script>")
		return err
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching search")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "Invalid search query", httpErr.Body)
}

func TestProductPage_DefaultsApplied(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Eggs","price":4.99,"category":"Dairy"}]`))
	}))
	defer srv.Close()

	page, err := New(srv.URL).ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, domain.Product{Name: "Eggs", Price: 4.99, Category: "Dairy", IsAvailable: true}, page.Products[0])
}
