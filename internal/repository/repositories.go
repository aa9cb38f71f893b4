package repository

import (
	"github.com/deppfellow/movie-watchlist/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Movie *MovieRepository
}

// NewRepositories constructs the repository container from the shared
// database handle on s.
func NewRepositories(s *server.Server) *Repositories {
	coll := s.DB.Collection(s.Config.Database.Collection)

	return &Repositories{
		Movie: NewMovieRepository(coll, s.Config.Database.OperationTimeout),
	}
}
