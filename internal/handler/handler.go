// Package handler is the first layer after the router.
//
// It binds requests, runs input validation through the validation
// package, calls the service layer and writes the JSON response. Errors
// are returned to Echo and rendered by the global error handler.
package handler
