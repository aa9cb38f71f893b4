// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request ids, request logging, CORS, Prometheus metrics,
// New Relic tracing, rate limiting, and panic recovery
package middleware
