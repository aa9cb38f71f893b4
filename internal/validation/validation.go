// Package validation contains the logic for validating
// request data.
//
// Request envelopes use the `validator` library to enforce rules
// defined in struct tags; movie payloads go through ValidateMovie,
// which reports every broken rule as a human-readable message.
package validation
