package client

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/catalog-browser/internal/filter"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// FetchProducts retrieves the product page for s. Text queries go to the
// search endpoint, other filters to the filter endpoint, and the default
// state to the plain product listing.
func (c *Client) FetchProducts(ctx context.Context, s filter.State) (*domain.ProductPage, error) {
	ep := filter.EndpointFor(s)
	rawQuery := filter.Encode(s)

	ctx, span := c.tracer.Start(ctx, "catalog.FetchProducts",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("catalog.endpoint", ep.String()),
			attribute.String("catalog.query", rawQuery),
		),
	)
	defer span.End()

	var page domain.ProductPage
	if err := c.get(ctx, ep.String(), c.pathFor(ep), rawQuery, &page); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetching %s: %w", ep, err)
	}
	if page.Products == nil {
		page.Products = []domain.Product{}
	}

	span.SetAttributes(
		attribute.Int("catalog.result_count", len(page.Products)),
		attribute.Int("catalog.total_count", page.TotalCount),
	)
	return &page, nil
}

// ListProducts retrieves the unfiltered product listing.
func (c *Client) ListProducts(ctx context.Context) (*domain.ProductPage, error) {
	return c.FetchProducts(ctx, filter.Default())
}

// ListCategories retrieves the category names known to the backend.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.ListCategories",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	var cats []string
	if err := c.get(ctx, "categories", c.paths.Categories, "", &cats); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	span.SetAttributes(attribute.Int("catalog.category_count", len(cats)))
	return cats, nil
}

func (c *Client) pathFor(ep filter.Endpoint) string {
	switch ep {
	case filter.EndpointSearch:
		return c.paths.Search
	case filter.EndpointFilter:
		return c.paths.Filter
	default:
		return c.paths.Products
	}
}
