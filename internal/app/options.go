package service

import (
	"github.com/okian/agrocast/internal/adapters/regression"
	"github.com/okian/agrocast/internal/adapters/weather"
	"github.com/okian/agrocast/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWeather sets the weather provider.
func WithWeather(p weather.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.weather = p
		}
	}
}

// WithModelPaths sets where Start loads the model artifacts from.
func WithModelPaths(irrigationPath, yieldPath string) Option {
	return func(s *Service) {
		if irrigationPath != "" {
			s.irrigationPath = irrigationPath
		}
		if yieldPath != "" {
			s.yieldPath = yieldPath
		}
	}
}

// WithIrrigationModel injects a ready model; Start then skips loading it.
func WithIrrigationModel(m regression.Predictor) Option {
	return func(s *Service) {
		if m != nil {
			s.irrigationModel = m
		}
	}
}

// WithYieldModel injects a ready model; Start then skips loading it.
func WithYieldModel(m regression.Predictor) Option {
	return func(s *Service) {
		if m != nil {
			s.yieldModel = m
		}
	}
}
