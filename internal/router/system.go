package router

import (
	"net/http"
	"path/filepath"

	"github.com/deppfellow/movie-watchlist/internal/handler"
	"github.com/deppfellow/movie-watchlist/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerSystemRoutes registers endpoints that are not movie CRUD:
//  1. Landing page and static assets
//  2. Docs UI (OpenAPI)
//  3. Liveness and watchlist counters
//  4. Prometheus scrape endpoint
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	staticDir := s.Config.Server.StaticDir

	r.File("/", filepath.Join(staticDir, "index.html"))
	r.Static("/static", staticDir)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)

	r.GET("/health", handler.Handle(
		h.Health.Handler,
		h.Health.CheckHealth,
		http.StatusOK,
		handler.NewRequest[handler.EmptyRequest],
	))

	r.GET("/app-metrics", handler.Handle(
		h.Health.Handler,
		h.Health.AppMetrics,
		http.StatusOK,
		handler.NewRequest[handler.EmptyRequest],
	))

	r.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
