package service

import "errors"

// Sentinel kinds returned by prediction operations. The HTTP layer maps them
// to status codes with errors.Is.
var (
	ErrInvalidCrop        = errors.New("invalid crop")
	ErrMissingCrop        = errors.New("crop is required by the yield model")
	ErrInvalidInput       = errors.New("invalid input")
	ErrWeatherUnavailable = errors.New("weather data not available")
	ErrUpstream           = errors.New("weather service unavailable")
	ErrNotReady           = errors.New("service not ready")
	ErrPrediction         = errors.New("prediction failed")
)
