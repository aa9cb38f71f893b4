// Package servicetest provides an in-memory movie store for tests.
package servicetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/deppfellow/movie-watchlist/internal/model"
)

// MovieStore keeps movies in insertion order behind a mutex. It follows the
// same contract as the MongoDB repository.
type MovieStore struct {
	mu     sync.Mutex
	movies []model.Movie
	nextID int

	// Err, when set, is returned by every call.
	Err error

	// Inserts counts successful Insert calls.
	Inserts int
}

func NewMovieStore() *MovieStore {
	return &MovieStore{}
}

func (s *MovieStore) index(id string) int {
	for i := range s.movies {
		if s.movies[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MovieStore) FindByID(_ context.Context, id string) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	i := s.index(id)
	if i < 0 {
		return nil, model.ErrMovieNotFound
	}
	movie := s.movies[i]
	return &movie, nil
}

func (s *MovieStore) Insert(_ context.Context, m *model.Movie) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}
	if s.index(m.ID) >= 0 {
		return "", fmt.Errorf("duplicate id %q", m.ID)
	}

	s.nextID++
	stored := *m
	stored.StorageID = fmt.Sprintf("%024x", s.nextID)
	s.movies = append(s.movies, stored)
	s.Inserts++

	return stored.StorageID, nil
}

func (s *MovieStore) Update(_ context.Context, id string, fields model.MovieFields, updatedAt string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, s.Err
	}
	i := s.index(id)
	if i < 0 {
		return 0, nil
	}
	fields.Apply(&s.movies[i])
	s.movies[i].UpdatedAt = updatedAt
	return 1, nil
}

func (s *MovieStore) Delete(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, s.Err
	}
	i := s.index(id)
	if i < 0 {
		return 0, nil
	}
	s.movies = append(s.movies[:i], s.movies[i+1:]...)
	return 1, nil
}

func (s *MovieStore) Count(_ context.Context, filter model.MovieFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, m := range s.movies {
		if filter.Watched == nil || m.Watched == *filter.Watched {
			n++
		}
	}
	return n, nil
}

func (s *MovieStore) Find(_ context.Context) ([]model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Movie, len(s.movies))
	copy(out, s.movies)
	return out, nil
}

func (s *MovieStore) FindIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	ids := make([]string, 0, len(s.movies))
	for _, m := range s.movies {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
