package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"vltweb/internal/metrics"
)

// Prometheus records a counter and a latency histogram for every request.
// The route template is used as the path label so ids do not explode the
// cardinality.
func Prometheus() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			metrics.HTTPRequestsTotal.
				WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).
				Inc()
			metrics.HTTPRequestDuration.
				WithLabelValues(c.Request().Method, path).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}
