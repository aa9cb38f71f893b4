package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/deppfellow/movie-watchlist/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Validate returns nil, validator.ValidationErrors (struct tags), or
// CustomValidationErrors (rules tags can't express).
type Validatable interface {
	Validate() error
}

// RequestBinder is implemented by requests that need more than c.Bind,
// e.g. keeping the raw body around for field-presence checks.
type RequestBinder interface {
	BindRequest(c echo.Context) error
}

// CustomValidationErrors is a list of messages that satisfies error.
type CustomValidationErrors []string

func (c CustomValidationErrors) Error() string {
	return "Validation failed: " + strings.Join(c, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct runs the tag validator over v.
func Struct(v any) error {
	return validate.Struct(v)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. payload.BindRequest(c) when implemented, c.Bind(payload) otherwise.
//  2. payload.Validate() applies validation rules.
//  3. Returns *errs.HTTPError (400) when either step fails.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := bind(c, payload); err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}

		// e.g. 413 from the body limit middleware keeps its status.
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) && echoErr.Code != http.StatusBadRequest {
			return echoErr
		}
		return errs.NewBadRequestError(bindMessage(err), nil)
	}

	if messages := validateStruct(payload); len(messages) > 0 {
		return errs.NewValidationError(messages)
	}

	return nil
}

func bind(c echo.Context, payload Validatable) error {
	if binder, ok := payload.(RequestBinder); ok {
		return binder.BindRequest(c)
	}
	return c.Bind(payload)
}

// bindMessage extracts the client-facing part of an Echo bind error.
func bindMessage(err error) string {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			return msg
		}
	}
	return "Invalid request"
}

// validateStruct calls v.Validate() and flattens the result into messages.
func validateStruct(v Validatable) []string {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return nil
}

func extractValidationError(err error) []string {
	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		return custom
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, err := range validationErrors {
		field := fieldLabel(err.Field())
		var msg string

		switch err.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", field)

		case "min":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("%s must be at least %s characters", field, err.Param())
			} else {
				msg = fmt.Sprintf("%s must be at least %s", field, err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("%s must not exceed %s characters", field, err.Param())
			} else {
				msg = fmt.Sprintf("%s must not exceed %s", field, err.Param())
			}

		case "printascii":
			msg = fmt.Sprintf("%s must contain printable ASCII characters only", field)

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		messages = append(messages, msg)
	}

	return messages
}

// fieldLabel renders a struct field name the way the movie messages do:
// "ID" becomes "Id".
func fieldLabel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}
