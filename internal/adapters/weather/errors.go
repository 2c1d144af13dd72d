package weather

import "errors"

// Sentinel kinds for weather lookups.
var (
	// ErrDataUnavailable means the provider answered but without the fields
	// a prediction needs (unknown city, missing temperature).
	ErrDataUnavailable = errors.New("weather data not available")
	// ErrUpstream covers transport failures, provider errors and an open breaker.
	ErrUpstream = errors.New("weather provider failed")
	// ErrMissingAPIKey is returned by New when no key is configured.
	ErrMissingAPIKey = errors.New("missing weather api key")
)
