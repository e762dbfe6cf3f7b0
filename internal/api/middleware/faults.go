package middleware

import (
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/catalog-browser/internal/metrics"
)

const faultKey = "fault"

// FaultConfig controls artificial latency and failures on /api/ routes.
// Slow, out-of-order responses are what the browser's supersession logic
// exists to handle, so the mock backend can produce them on demand.
type FaultConfig struct {
	// Latency is added to every API response.
	Latency time.Duration
	// Jitter adds a uniformly random extra delay in [0, Jitter).
	Jitter time.Duration
	// FailRate is the probability in [0, 1] of answering 500.
	FailRate float64

	// Float64 and Int64N default to math/rand/v2. Tests replace them.
	Float64 func() float64
	Int64N  func(n int64) int64
}

// Enabled reports whether any fault is configured.
func (f FaultConfig) Enabled() bool {
	return f.Latency > 0 || f.Jitter > 0 || f.FailRate > 0
}

// Faults returns Echo middleware that delays and fails API requests
// according to cfg. A client that disconnects during the delay gets no
// response.
func Faults(cfg FaultConfig) echo.MiddlewareFunc {
	if cfg.Float64 == nil {
		cfg.Float64 = rand.Float64 //nolint:gosec // not security sensitive
	}
	if cfg.Int64N == nil {
		cfg.Int64N = rand.Int64N //nolint:gosec // not security sensitive
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if !cfg.Enabled() || !strings.HasPrefix(path, "/api/") {
				return next(c)
			}

			delay := cfg.Latency
			if cfg.Jitter > 0 {
				delay += time.Duration(cfg.Int64N(int64(cfg.Jitter)))
			}
			if delay > 0 {
				t := time.NewTimer(delay)
				select {
				case <-t.C:
				case <-c.Request().Context().Done():
					t.Stop()
					return nil
				}
			}

			if cfg.FailRate > 0 && cfg.Float64() < cfg.FailRate {
				c.Set(faultKey, "injected_failure")
				metrics.HTTPFaultsInjectedTotal.WithLabelValues(path).Inc()
				c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
				return c.JSON(http.StatusInternalServerError, problem{
					Title:  http.StatusText(http.StatusInternalServerError),
					Status: http.StatusInternalServerError,
					Detail: "injected failure",
				})
			}

			return next(c)
		}
	}
}
