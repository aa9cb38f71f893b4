// Package model holds the movie record and the loosely typed payload it is
// built from.
package model

import (
	"errors"
	"time"
)

// ErrMovieNotFound is returned by stores when no record carries the given id.
var ErrMovieNotFound = errors.New("movie not found")

// Movie is the single record managed by the service.
//
// StorageID is the store-assigned identity rendered as a string; it is
// distinct from the caller-supplied ID and never used for lookups.
type Movie struct {
	StorageID string   `json:"_id,omitempty"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Genre     string   `json:"genre"`
	Year      *int     `json:"year"`
	Rating    *float64 `json:"rating"`
	Watched   bool     `json:"watched"`
	Notes     string   `json:"notes"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// MovieFields are the mutable fields written by both create and update.
type MovieFields struct {
	Title   string
	Genre   string
	Year    *int
	Rating  *float64
	Watched bool
	Notes   string
}

// Apply overwrites every mutable field of m. Nothing from the previous
// value survives: this is what makes PUT a full replace.
func (f MovieFields) Apply(m *Movie) {
	m.Title = f.Title
	m.Genre = f.Genre
	m.Year = f.Year
	m.Rating = f.Rating
	m.Watched = f.Watched
	m.Notes = f.Notes
}

// MovieFilter narrows Count. A nil Watched counts every record.
type MovieFilter struct {
	Watched *bool
}

// AppMetrics is the body of GET /app-metrics.
type AppMetrics struct {
	TotalMovies int64  `json:"total_movies"`
	Watched     int64  `json:"watched"`
	Unwatched   int64  `json:"unwatched"`
	Timestamp   string `json:"timestamp"`
}

// Health is the body of GET /health.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Message is a plain confirmation body.
type Message struct {
	Message string `json:"message"`
}

// FormatTimestamp renders t the way every timestamp in a response is rendered.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
