package handler

import (
	"github.com/deppfellow/movie-watchlist/internal/model"
	"github.com/deppfellow/movie-watchlist/internal/server"
	"github.com/deppfellow/movie-watchlist/internal/service"
	"github.com/labstack/echo/v4"
)

// MovieHandler serves the /movie and /movies routes.
type MovieHandler struct {
	Handler
	movieService *service.MovieService
}

func NewMovieHandler(s *server.Server, movieService *service.MovieService) *MovieHandler {
	return &MovieHandler{
		Handler:      NewHandler(s),
		movieService: movieService,
	}
}

// CreateMovie handles POST /movie/:id.
func (h *MovieHandler) CreateMovie(c echo.Context, req *MovieBodyRequest) (*model.Movie, error) {
	return h.movieService.Create(c.Request().Context(), req.ID, req.Payload)
}

// UpdateMovie handles PUT /movie/:id. Every mutable field is replaced.
func (h *MovieHandler) UpdateMovie(c echo.Context, req *MovieBodyRequest) (*model.Movie, error) {
	return h.movieService.Update(c.Request().Context(), req.ID, req.Payload)
}

// DeleteMovie handles DELETE /movie/:id.
func (h *MovieHandler) DeleteMovie(c echo.Context, req *MovieIDRequest) (*model.Message, error) {
	return h.movieService.Delete(c.Request().Context(), req.ID)
}

// GetMovie handles GET /movie/:id.
func (h *MovieHandler) GetMovie(c echo.Context, req *MovieIDRequest) (*model.Movie, error) {
	return h.movieService.Get(c.Request().Context(), req.ID)
}

// ListMovieIDs handles GET /movie.
func (h *MovieHandler) ListMovieIDs(c echo.Context, _ *EmptyRequest) ([]string, error) {
	return h.movieService.ListIDs(c.Request().Context())
}

// ListMovies handles GET /movies.
func (h *MovieHandler) ListMovies(c echo.Context, _ *EmptyRequest) ([]model.Movie, error) {
	return h.movieService.ListAll(c.Request().Context())
}
