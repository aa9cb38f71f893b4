package handler

import (
	"github.com/deppfellow/movie-watchlist/internal/model"
	"github.com/deppfellow/movie-watchlist/internal/server"
	"github.com/deppfellow/movie-watchlist/internal/service"
	"github.com/labstack/echo/v4"
)

// HealthHandler exposes the "system" endpoints that uptime monitors and the
// landing page use: liveness and the watchlist counters.
type HealthHandler struct {
	Handler
	movieService *service.MovieService
}

// NewHealthHandler constructs a HealthHandler with access to shared app dependencies.
func NewHealthHandler(s *server.Server, movieService *service.MovieService) *HealthHandler {
	return &HealthHandler{
		Handler:      NewHandler(s),
		movieService: movieService,
	}
}

// CheckHealth reports liveness. It never touches MongoDB, so a slow or
// unreachable database does not make the process look dead.
func (h *HealthHandler) CheckHealth(c echo.Context, _ *EmptyRequest) (*model.Health, error) {
	return h.movieService.Health(), nil
}

// AppMetrics returns total, watched and unwatched counts, recomputed on every call.
func (h *HealthHandler) AppMetrics(c echo.Context, _ *EmptyRequest) (*model.AppMetrics, error) {
	metrics, err := h.movieService.AppMetrics(c.Request().Context())
	if err != nil {
		return nil, err
	}

	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomMetric("Custom/Watchlist/TotalMovies", float64(metrics.TotalMovies))
		app.RecordCustomMetric("Custom/Watchlist/Watched", float64(metrics.Watched))
	}

	return metrics, nil
}
