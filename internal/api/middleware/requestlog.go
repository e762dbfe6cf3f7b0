package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID returns the ID assigned by RequestLog, or "" outside it.
func RequestID(c echo.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

// RequestLog returns Echo middleware that logs each request with its query
// string, so debounced browser traffic can be read back from the log. A
// request ID is generated when the caller sends none. Probe paths log at
// debug and server errors at warn.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set(requestIDKey, reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			path := c.Request().URL.Path
			status := responseStatus(c, err)

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelWarn
			case isProbe(path):
				level = slog.LevelDebug
			}

			attrs := []slog.Attr{
				slog.String("method", c.Request().Method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", reqID),
			}
			if q := c.Request().URL.RawQuery; q != "" {
				attrs = append(attrs, slog.String("query", q))
			}
			if fault, ok := c.Get(faultKey).(string); ok {
				attrs = append(attrs, slog.String("fault", fault))
			}

			log.LogAttrs(context.Background(), level, "request", attrs...)

			return err
		}
	}
}

func isProbe(path string) bool {
	_, ok := healthGauges[path]
	return ok || path == "/metrics"
}
