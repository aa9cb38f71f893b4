package validation

import (
	"github.com/deppfellow/movie-watchlist/internal/model"
)

const (
	MinYear   = 1800
	MaxYear   = 2100
	MinRating = 0.0
	MaxRating = 10.0
)

// Messages returned by ValidateMovie.
const (
	MsgTitleRequired   = "Title is required"
	MsgYearNotNumber   = "Year must be a number"
	MsgYearRange       = "Year must be between 1800 and 2100"
	MsgRatingNotNumber = "Rating must be a number"
	MsgRatingRange     = "Rating must be between 0 and 10"
	MsgGenreNotString  = "Genre must be a string"
	MsgNotesNotString  = "Notes must be a string"
	MsgWatchedNotBool  = "Watched must be a boolean"
)

// ValidateMovie returns every rule the payload breaks, in rule order.
// An empty result means the payload is valid.
//
// A year sent as null is reported as not a number; a rating sent as null
// is treated as absent.
func ValidateMovie(p *model.MoviePayload) []string {
	errors := []string{}

	if title, ok := model.StringValue(p.Title); !ok || title == "" {
		errors = append(errors, MsgTitleRequired)
	}

	if model.Present(p.Year) {
		year, err := model.ParseYear(p.Year)
		switch {
		case err != nil:
			errors = append(errors, MsgYearNotNumber)
		case year < MinYear || year > MaxYear:
			errors = append(errors, MsgYearRange)
		}
	}

	if model.Present(p.Rating) && !model.IsNull(p.Rating) {
		rating, err := model.ParseRating(p.Rating)
		switch {
		case err != nil:
			errors = append(errors, MsgRatingNotNumber)
		case rating < MinRating || rating > MaxRating:
			errors = append(errors, MsgRatingRange)
		}
	}

	if !optionalString(p.Genre) {
		errors = append(errors, MsgGenreNotString)
	}
	if !optionalString(p.Notes) {
		errors = append(errors, MsgNotesNotString)
	}
	if model.Present(p.Watched) && !model.IsNull(p.Watched) {
		if _, ok := model.BoolValue(p.Watched); !ok {
			errors = append(errors, MsgWatchedNotBool)
		}
	}

	return errors
}

func optionalString(raw []byte) bool {
	if !model.Present(raw) || model.IsNull(raw) {
		return true
	}
	_, ok := model.StringValue(raw)
	return ok
}
