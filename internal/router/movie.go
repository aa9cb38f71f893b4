package router

import (
	"net/http"

	"github.com/deppfellow/movie-watchlist/internal/handler"
	"github.com/labstack/echo/v4"
)

func registerMovieRoutes(r *echo.Echo, h *handler.Handlers) {
	r.POST("/movie/:id", handler.Handle(
		h.Movie.Handler,
		h.Movie.CreateMovie,
		http.StatusCreated,
		handler.NewRequest[handler.MovieBodyRequest],
	))

	r.PUT("/movie/:id", handler.Handle(
		h.Movie.Handler,
		h.Movie.UpdateMovie,
		http.StatusOK,
		handler.NewRequest[handler.MovieBodyRequest],
	))

	r.DELETE("/movie/:id", handler.Handle(
		h.Movie.Handler,
		h.Movie.DeleteMovie,
		http.StatusOK,
		handler.NewRequest[handler.MovieIDRequest],
	))

	r.GET("/movie/:id", handler.Handle(
		h.Movie.Handler,
		h.Movie.GetMovie,
		http.StatusOK,
		handler.NewRequest[handler.MovieIDRequest],
	))

	r.GET("/movie", handler.Handle(
		h.Movie.Handler,
		h.Movie.ListMovieIDs,
		http.StatusOK,
		handler.NewRequest[handler.EmptyRequest],
	))

	r.GET("/movies", handler.Handle(
		h.Movie.Handler,
		h.Movie.ListMovies,
		http.StatusOK,
		handler.NewRequest[handler.EmptyRequest],
	))
}
