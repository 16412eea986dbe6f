package ai

import "errors"

var (
	// ErrMissingAPIKey is returned before any request when no credential is set.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrNoChoices is returned when the response carries an empty choices array.
	ErrNoChoices = errors.New("no choices in response")
	// ErrMalformedResponse is returned when the body is not the expected JSON shape.
	ErrMalformedResponse = errors.New("malformed chat completion response")
)
