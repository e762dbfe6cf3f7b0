// Package main runs a mock catalog backend for local development. It serves
// the sample products, or a JSON fixture, on the same routes as the real
// catalog API and can inject latency and failures.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/catalog-browser/internal/api/middleware"
	"github.com/donaldgifford/catalog-browser/internal/api/server"
	"github.com/donaldgifford/catalog-browser/internal/catalog"
	"github.com/donaldgifford/catalog-browser/pkg/logger"
)

var version = "dev"

type options struct {
	port     int
	fixture  string
	latency  time.Duration
	jitter   time.Duration
	failRate float64
	logLevel string
}

func main() {
	var opts options
	flag.IntVar(&opts.port, "port", 8000, "port to listen on")
	flag.StringVar(&opts.fixture, "fixture", "", "path to a products JSON fixture (default: built-in sample)")
	flag.DurationVar(&opts.latency, "latency", 0, "delay added to every API response")
	flag.DurationVar(&opts.jitter, "jitter", 0, "random extra delay up to this value")
	flag.Float64Var(&opts.failRate, "fail-rate", 0, "probability in [0,1] of answering 500")
	flag.StringVar(&opts.logLevel, "log-level", "debug", "log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(opts.logLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		log.Error("mock catalog stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log *slog.Logger) error {
	e, err := newServer(opts, log)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", opts.port)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting mock catalog", "addr", addr, "version", version)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down mock catalog")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func newServer(opts options, log *slog.Logger) (*echo.Echo, error) {
	if opts.failRate < 0 || opts.failRate > 1 {
		return nil, fmt.Errorf("fail-rate must be between 0 and 1 (got %g)", opts.failRate)
	}
	if opts.latency < 0 || opts.jitter < 0 {
		return nil, errors.New("latency and jitter must not be negative")
	}

	c, err := loadCatalog(opts.fixture)
	if err != nil {
		return nil, err
	}
	log.Info("loaded catalog", "products", len(c.Available()), "fixture", opts.fixture)

	return server.New(server.Options{
		Catalog: c,
		Log:     log,
		Version: version,
		Faults: middleware.FaultConfig{
			Latency:  opts.latency,
			Jitter:   opts.jitter,
			FailRate: opts.failRate,
		},
	}), nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading fixture: %w", err)
	}
	return c, nil
}
