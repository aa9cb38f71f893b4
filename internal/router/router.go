// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the route groups, mapping
// specific paths to their corresponding handlers.
package router

import (
	"github.com/deppfellow/movie-watchlist/internal/handler"
	"github.com/deppfellow/movie-watchlist/internal/middleware"
	"github.com/deppfellow/movie-watchlist/internal/server"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// maxBodySize caps request bodies; a movie is a handful of short fields.
const maxBodySize = "1M"

// NewRouter builds the Echo instance with every middleware and route.
//
// Middleware order matters:
//  1. RequestID first so every later log line and response carries it.
//  2. New Relic transaction, then custom attributes on it.
//  3. ContextEnhancer builds the request-scoped logger (needs 1 and 2).
//  4. RequestLogger and Metrics observe the final outcome, 429s included.
//  5. CORS, security headers, rate limit and body limit.
//  6. Recover last, closest to the handler.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.JSONSerializer = JSONSerializer{}
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middleware.Metrics(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.RateLimit.Limit(),
		echoMiddleware.BodyLimit(maxBodySize),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, s, h)
	registerMovieRoutes(router, h)

	return router
}
