package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/movie-watchlist/internal/errs"
	"github.com/deppfellow/movie-watchlist/internal/middleware"
	"github.com/deppfellow/movie-watchlist/internal/model"
	"github.com/rs/zerolog"
)

// MovieStore is the capability the movie service needs from the database.
//
// FindByID reports a missing record as model.ErrMovieNotFound. Update and
// Delete report how many documents matched; zero is not an error.
type MovieStore interface {
	FindByID(ctx context.Context, id string) (*model.Movie, error)
	Insert(ctx context.Context, m *model.Movie) (string, error)
	Update(ctx context.Context, id string, fields model.MovieFields, updatedAt string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Count(ctx context.Context, filter model.MovieFilter) (int64, error)
	Find(ctx context.Context) ([]model.Movie, error)
	FindIDs(ctx context.Context) ([]string, error)
}

// Client-facing messages.
const (
	MsgMovieExists   = "Movie with this ID already exists"
	MsgMovieNotFound = "Movie not found"
	MsgMovieDeleted  = "Movie deleted successfully"
)

var (
	codeMovieExists   = "MOVIE_ALREADY_EXISTS"
	codeMovieNotFound = "MOVIE_NOT_FOUND"
)

func errMovieExists() *errs.HTTPError {
	return errs.NewConflictError(MsgMovieExists, &codeMovieExists)
}

func errMovieNotFound() *errs.HTTPError {
	return errs.NewNotFoundError(MsgMovieNotFound, &codeMovieNotFound)
}

// MovieService holds the movie business rules: existence checks, default
// substitution, timestamps and the full-replace update.
//
// Payloads reach it already validated by the handler layer. Store errors
// other than a missing record are wrapped and returned unchanged in kind;
// the global error handler turns them into a 500.
type MovieService struct {
	store  MovieStore
	logger *zerolog.Logger
	now    func() time.Time
}

// NewMovieService constructs a MovieService over store.
func NewMovieService(store MovieStore, logger *zerolog.Logger) *MovieService {
	return &MovieService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *MovieService) timestamp() string {
	return model.FormatTimestamp(s.now())
}

// loggerFor prefers the request-scoped logger, which already carries
// request_id and movie_id.
func (s *MovieService) loggerFor(ctx context.Context, id string) *zerolog.Logger {
	if logger, ok := middleware.LoggerFromContext(ctx); ok {
		return logger
	}
	logger := s.logger.With().Str("movie_id", id).Logger()
	return &logger
}

// Create inserts a new movie under id.
//
// It fails with 409 when a movie with the same id already exists; the
// existing record is left untouched.
func (s *MovieService) Create(ctx context.Context, id string, payload *model.MoviePayload) (*model.Movie, error) {
	_, err := s.store.FindByID(ctx, id)
	switch {
	case err == nil:
		return nil, errMovieExists()
	case !errors.Is(err, model.ErrMovieNotFound):
		return nil, fmt.Errorf("check movie existence: %w", err)
	}

	movie := &model.Movie{
		ID:        id,
		CreatedAt: s.timestamp(),
	}
	payload.Fields().Apply(movie)

	storageID, err := s.store.Insert(ctx, movie)
	if err != nil {
		return nil, err
	}
	movie.StorageID = storageID

	s.loggerFor(ctx, id).Info().
		Str("storage_id", storageID).
		Msg("movie created")

	return movie, nil
}

// Update replaces every mutable field of the movie with id.
//
// Fields missing from payload are reset to their defaults, not kept.
func (s *MovieService) Update(ctx context.Context, id string, payload *model.MoviePayload) (*model.Movie, error) {
	matched, err := s.store.Update(ctx, id, payload.Fields(), s.timestamp())
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return nil, errMovieNotFound()
	}

	movie, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrMovieNotFound) {
			// Deleted between the update and the read.
			return nil, errMovieNotFound()
		}
		return nil, fmt.Errorf("read updated movie: %w", err)
	}

	s.loggerFor(ctx, id).Info().Msg("movie updated")

	return movie, nil
}

// Delete removes the movie with id.
func (s *MovieService) Delete(ctx context.Context, id string) (*model.Message, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, errMovieNotFound()
	}

	s.loggerFor(ctx, id).Info().Msg("movie deleted")

	return &model.Message{Message: MsgMovieDeleted}, nil
}

// Get returns the movie with id.
func (s *MovieService) Get(ctx context.Context, id string) (*model.Movie, error) {
	movie, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrMovieNotFound) {
			return nil, errMovieNotFound()
		}
		return nil, err
	}
	return movie, nil
}

// ListIDs returns every movie id in store order.
func (s *MovieService) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := s.store.FindIDs(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// ListAll returns every movie in full.
func (s *MovieService) ListAll(ctx context.Context) ([]model.Movie, error) {
	movies, err := s.store.Find(ctx)
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	return movies, nil
}

// AppMetrics counts all and watched movies. Nothing is cached.
func (s *MovieService) AppMetrics(ctx context.Context) (*model.AppMetrics, error) {
	total, err := s.store.Count(ctx, model.MovieFilter{})
	if err != nil {
		return nil, err
	}

	watchedOnly := true
	watched, err := s.store.Count(ctx, model.MovieFilter{Watched: &watchedOnly})
	if err != nil {
		return nil, err
	}

	return &model.AppMetrics{
		TotalMovies: total,
		Watched:     watched,
		Unwatched:   total - watched,
		Timestamp:   s.timestamp(),
	}, nil
}

// Health reports liveness. It never touches the store.
func (s *MovieService) Health() *model.Health {
	return &model.Health{
		Status:    "healthy",
		Timestamp: s.timestamp(),
	}
}
