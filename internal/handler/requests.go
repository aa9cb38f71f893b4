package handler

import (
	"errors"
	"io"

	"github.com/deppfellow/movie-watchlist/internal/errs"
	"github.com/deppfellow/movie-watchlist/internal/model"
	"github.com/deppfellow/movie-watchlist/internal/validation"
	"github.com/labstack/echo/v4"
)

const (
	msgNoData      = "No data provided"
	msgInvalidJSON = "Invalid JSON body"
)

// EmptyRequest is used by routes without path parameters or body.
type EmptyRequest struct{}

func (r *EmptyRequest) BindRequest(c echo.Context) error { return nil }

func (r *EmptyRequest) Validate() error { return nil }

// MovieIDRequest carries the :id path parameter.
type MovieIDRequest struct {
	ID string `validate:"required"`
}

func (r *MovieIDRequest) BindRequest(c echo.Context) error {
	r.ID = c.Param("id")
	return nil
}

func (r *MovieIDRequest) Validate() error {
	return validation.Struct(r)
}

// MovieBodyRequest carries the :id path parameter and the raw movie body.
//
// The body is decoded into model.MoviePayload instead of a typed struct so
// that wrong JSON types surface as validation messages, not bind errors.
type MovieBodyRequest struct {
	MovieIDRequest
	Payload *model.MoviePayload
}

func (r *MovieBodyRequest) BindRequest(c echo.Context) error {
	r.ID = c.Param("id")

	var body []byte
	if c.Request().Body != nil {
		var err error
		body, err = io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
	}

	payload, err := model.DecodeMoviePayload(body)
	switch {
	case errors.Is(err, model.ErrEmptyPayload):
		return errs.NewBadRequestError(msgNoData, nil)
	case errors.Is(err, model.ErrInvalidPayload):
		return errs.NewBadRequestError(msgInvalidJSON, nil)
	case err != nil:
		return err
	}

	r.Payload = payload
	return nil
}

func (r *MovieBodyRequest) Validate() error {
	if err := r.MovieIDRequest.Validate(); err != nil {
		return err
	}

	if messages := validation.ValidateMovie(r.Payload); len(messages) > 0 {
		return validation.CustomValidationErrors(messages)
	}
	return nil
}
