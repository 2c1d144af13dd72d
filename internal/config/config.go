// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and AGROCAST_ env vars.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// WeatherBaseURL is the current-weather endpoint of the provider.
	WeatherBaseURL string `koanf:"weather_base_url"`

	// WeatherAPIKey authenticates against the weather provider. Required.
	WeatherAPIKey string `koanf:"weather_api_key"`

	// WeatherTimeoutMS bounds a single weather call.
	WeatherTimeoutMS int `koanf:"weather_timeout_ms"`

	// WeatherMaxRetries is the number of retries on transient weather failures.
	WeatherMaxRetries int `koanf:"weather_max_retries"`

	// Circuit breaker guarding the weather provider.
	BreakerFailures   int `koanf:"breaker_failures"`
	BreakerOpenMS     int `koanf:"breaker_open_ms"`
	BreakerIntervalMS int `koanf:"breaker_interval_ms"`

	// IrrigationModelPath and YieldModelPath locate the exported regression models.
	IrrigationModelPath string `koanf:"irrigation_model_path"`
	YieldModelPath      string `koanf:"yield_model_path"`

	// Prometheus series naming. Latency buckets are in milliseconds; empty
	// means DefaultLatencyBucketsMS.
	MetricsNamespace        string            `koanf:"metrics_namespace"`
	MetricsSubsystem        string            `koanf:"metrics_subsystem"`
	MetricsLatencyBucketsMS []float64         `koanf:"metrics_latency_buckets_ms"`
	MetricsConstLabels      map[string]string `koanf:"metrics_const_labels"`
}

// DefaultLatencyBucketsMS covers a cached lookup up to a fully retried
// weather call.
var DefaultLatencyBucketsMS = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// New creates a Config populated with defaults. The weather API key has no
// default and must be supplied through the file or the environment.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8000",
		WeatherBaseURL:      "https://api.openweathermap.org/data/2.5/weather",
		WeatherTimeoutMS:    5000,
		WeatherMaxRetries:   1,
		BreakerFailures:     5,
		BreakerOpenMS:       30_000,
		BreakerIntervalMS:   60_000,
		IrrigationModelPath: "models/irrigation_model.yaml",
		YieldModelPath:      "models/yield_model.yaml",
		MetricsNamespace:    "agrocast",
		MetricsSubsystem:    "predictor",
	}
}

// LatencyBucketsMS returns the configured latency buckets or the defaults.
func (c *Config) LatencyBucketsMS() []float64 {
	if len(c.MetricsLatencyBucketsMS) == 0 {
		return DefaultLatencyBucketsMS
	}
	return c.MetricsLatencyBucketsMS
}

// WeatherTimeout returns WeatherTimeoutMS as a duration.
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.WeatherTimeoutMS) * time.Millisecond
}

// BreakerOpen returns how long the breaker stays open.
func (c *Config) BreakerOpen() time.Duration {
	return time.Duration(c.BreakerOpenMS) * time.Millisecond
}

// BreakerInterval returns the closed-state counter reset interval.
func (c *Config) BreakerInterval() time.Duration {
	return time.Duration(c.BreakerIntervalMS) * time.Millisecond
}
