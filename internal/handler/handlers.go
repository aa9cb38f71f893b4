package handler

import (
	"github.com/deppfellow/movie-watchlist/internal/server"
	"github.com/deppfellow/movie-watchlist/internal/service"
)

// Handlers is a container that groups all HTTP handlers, so router setup
// passes one object around instead of many.
type Handlers struct {
	Health  *HealthHandler  // liveness and watchlist counters
	Movie   *MovieHandler   // movie CRUD
	OpenAPI *OpenAPIHandler // API documentation UI
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s, services.Movie),
		Movie:   NewMovieHandler(s, services.Movie),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
