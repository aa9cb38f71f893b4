package middleware

import (
	"time"

	"github.com/deppfellow/movie-watchlist/internal/metrics"
	"github.com/labstack/echo/v4"
)

// unmatchedRoute labels requests that hit no route, so scanners can't blow
// up label cardinality with arbitrary paths.
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route template.
//
// Like the request logger, it derives the status from the returned error
// because the global error handler writes the response after this runs.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = unmatchedRoute
			}

			metrics.RecordHTTPRequest(c.Request().Method, route, statusFromError(c, err), time.Since(start))
			return err
		}
	}
}

// statusFromError returns the status the client will finally see.
func statusFromError(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	return ResolveError(err).Status
}
