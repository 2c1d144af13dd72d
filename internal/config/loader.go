package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "AGROCAST_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if AGROCAST_CONFIG is set
//  3. env (prefix AGROCAST_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// AGROCAST_WEATHER_API_KEY -> weather_api_key (flat keys, underscores kept).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required values and bounds.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.WeatherAPIKey) == "":
		return fmt.Errorf("%w: weather_api_key must be set", ErrInvalidConfig)
	case c.WeatherTimeoutMS <= 0:
		return fmt.Errorf("%w: weather_timeout_ms must be positive", ErrInvalidConfig)
	case c.WeatherMaxRetries < 0:
		return fmt.Errorf("%w: weather_max_retries must not be negative", ErrInvalidConfig)
	case c.BreakerFailures <= 0:
		return fmt.Errorf("%w: breaker_failures must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.IrrigationModelPath) == "":
		return fmt.Errorf("%w: irrigation_model_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.YieldModelPath) == "":
		return fmt.Errorf("%w: yield_model_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.MetricsNamespace) == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	for i, b := range c.MetricsLatencyBucketsMS {
		if b <= 0 || (i > 0 && b <= c.MetricsLatencyBucketsMS[i-1]) {
			return fmt.Errorf("%w: metrics_latency_buckets_ms must be positive and increasing", ErrInvalidConfig)
		}
	}
	u, err := url.Parse(c.WeatherBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: weather_base_url %q is not an absolute URL", ErrInvalidConfig, c.WeatherBaseURL)
	}
	return nil
}
