package errs

import "strings"

// HTTPError is the main custom error type for API responses.
//
// Only Message and Errors reach the client, which keeps every error body in
// one of two shapes:
//
//	{"error": "Movie not found"}
//	{"errors": ["Title is required", "Year must be a number"]}
//
// Code and Status stay server side: the status becomes the HTTP status line
// and the code goes into the logs.
type HTTPError struct {
	Code    string `json:"-"`
	Status  int    `json:"-"`
	Message string `json:"error,omitempty"`

	// Errors holds every validation message for a rejected payload.
	Errors []string `json:"errors,omitempty"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	if e.Message == "" && len(e.Errors) > 0 {
		return strings.Join(e.Errors, "; ")
	}
	return e.Message
}

// Is customizes how errors.Is(...) treats HTTPError.
//
// It only checks whether target is also a *HTTPError, not whether
// Code/Status match. Use errors.As to inspect the fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
