// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/movie-watchlist/internal/repository"
	"github.com/deppfellow/movie-watchlist/internal/server"
)

type Services struct {
	Movie *MovieService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Movie: NewMovieService(repos.Movie, s.Logger),
	}, nil
}
