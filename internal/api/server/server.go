// Package server assembles the mock catalog backend: an Echo instance with
// the probe, metrics and Huma catalog routes behind the request middleware.
package server

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/catalog-browser/internal/api/handlers"
	"github.com/donaldgifford/catalog-browser/internal/api/middleware"
	"github.com/donaldgifford/catalog-browser/internal/catalog"
)

// Options configures New.
type Options struct {
	Catalog *catalog.Catalog
	Log     *slog.Logger
	Faults  middleware.FaultConfig
	Version string
}

// New returns a ready-to-serve Echo instance. A nil catalog serves the
// built-in sample products.
func New(opts Options) *echo.Echo {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middleware.RequestLog(opts.Log),
		middleware.Recovery(opts.Log),
		middleware.Metrics(),
		middleware.Faults(opts.Faults),
	)

	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(opts.Catalog))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Catalog API", opts.Version))
	handlers.RegisterProductRoutes(api, handlers.NewProductsHandler(opts.Catalog, opts.Log))

	return e
}
