// Package client provides a thin HTTP client for the catalog backend API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/catalog-browser/internal/metrics"
)

const tracerName = "github.com/donaldgifford/catalog-browser/internal/api/client"

// DefaultTimeout bounds a single backend call when no HTTP client is given.
const DefaultTimeout = 10 * time.Second

// Paths holds the backend endpoint paths, relative to the base URL.
type Paths struct {
	Products   string
	Filter     string
	Search     string
	Categories string
}

// DefaultPaths returns the catalog API v1 paths.
func DefaultPaths() Paths {
	return Paths{
		Products:   "/api/v1/products",
		Filter:     "/api/v1/filter",
		Search:     "/api/v1/search",
		Categories: "/api/v1/categories",
	}
}

// Client is a thin HTTP client for the catalog backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	paths          Paths
	limiter        *RateLimiter
	log            *slog.Logger
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
}

// New creates a new API client targeting the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		timeout:        DefaultTimeout,
		paths:          DefaultPaths(),
		log:            slog.Default(),
		tracerProvider: otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(c.tracerProvider),
			),
		}
	}
	c.tracer = c.tracerProvider.Tracer(tracerName)
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client is used as-is, so
// WithTimeout and transport tracing do not apply to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPaths overrides the endpoint paths. Empty fields keep their defaults.
func WithPaths(p Paths) Option {
	return func(c *Client) {
		if p.Products != "" {
			c.paths.Products = p.Products
		}
		if p.Filter != "" {
			c.paths.Filter = p.Filter
		}
		if p.Search != "" {
			c.paths.Search = p.Search
		}
		if p.Categories != "" {
			c.paths.Categories = p.Categories
		}
	}
}

// WithRateLimiter throttles outgoing calls.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = rl
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithTracerProvider sets the provider for client spans and the default
// transport. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracerProvider = tp
	}
}

// get performs a GET request and decodes the JSON response into dst.
// endpoint labels metrics; rawQuery is appended verbatim.
func (c *Client) get(ctx context.Context, endpoint, path, rawQuery string, dst any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.ClientRequestsTotal.WithLabelValues(endpoint, "throttled").Inc()
			return err
		}
	}

	url := c.baseURL + path
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ClientRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return &NetworkError{URL: url, BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ClientRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return &NetworkError{URL: url, BaseURL: c.baseURL, Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.log.Debug("backend call",
		"endpoint", endpoint,
		"url", url,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		metrics.ClientRequestsTotal.WithLabelValues(endpoint, "http_error").Inc()
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
			URL:        url,
		}
	}

	metrics.ClientRequestsTotal.WithLabelValues(endpoint, "ok").Inc()

	if dst != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dst); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
