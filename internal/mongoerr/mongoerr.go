// Package mongoerr specifically handles MongoDB driver errors.
//
// It turns the few driver errors that carry meaning for a client
// (a duplicate key, a missing document) into HTTP errors and hides
// everything else behind a generic 500.
package mongoerr

import (
	"context"
	"errors"

	"github.com/deppfellow/movie-watchlist/internal/errs"
	"go.mongodb.org/mongo-driver/mongo"
)

// Code classifies a driver error.
type Code string

const (
	DuplicateKey Code = "duplicate_key"
	NoDocuments  Code = "no_documents"
	Timeout      Code = "timeout"
	Network      Code = "network"
	Other        Code = "other"
)

// ErrCode reports the Code for err by walking its chain.
func ErrCode(err error) Code {
	switch {
	case err == nil:
		return Other
	case mongo.IsDuplicateKeyError(err):
		return DuplicateKey
	case errors.Is(err, mongo.ErrNoDocuments):
		return NoDocuments
	case mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case mongo.IsNetworkError(err):
		return Network
	default:
		return Other
	}
}

// HandleError converts an error coming out of the store into an HTTPError.
//
// Errors that are already *errs.HTTPError pass through untouched.
//   - duplicate key on the unique `id` index -> 409 (an insert lost a race
//     against the existence check)
//   - mongo.ErrNoDocuments -> 404
//   - anything else -> 500 without driver details
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch ErrCode(err) {
	case DuplicateKey:
		code := "MOVIE_ALREADY_EXISTS"
		return errs.NewConflictError("Movie with this ID already exists", &code)
	case NoDocuments:
		code := "MOVIE_NOT_FOUND"
		return errs.NewNotFoundError("Movie not found", &code)
	default:
		return errs.NewInternalServerError()
	}
}
