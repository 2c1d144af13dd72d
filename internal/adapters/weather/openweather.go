// Package weather fetches current conditions for a city from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/okian/agrocast/internal/domain/model"
	"github.com/okian/agrocast/pkg/logger"
	"github.com/okian/agrocast/pkg/metrics"
)

const (
	defaultTimeout         = 5 * time.Second
	defaultMaxRetries      = 1
	defaultRetryInterval   = 200 * time.Millisecond
	defaultBreakerFailures = 5
	defaultBreakerOpen     = 30 * time.Second
	defaultBreakerInterval = time.Minute
	errorBodyLimit         = 256
	units                  = "metric"
)

// Provider returns the current weather for a city.
type Provider interface {
	Current(ctx context.Context, city string) (model.WeatherSnapshot, error)
}

// owmResponse is the part of the current-weather document we read. Pointers
// distinguish absent fields from zero values.
type owmResponse struct {
	Cod  any `json:"cod"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Message string `json:"message"`
}

// retryableError marks a failure worth another attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Client calls the OpenWeatherMap current-weather endpoint.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  logger.Logger

	timeout         time.Duration
	maxRetries      int
	retryInterval   time.Duration
	breakerFailures int
	breakerOpen     time.Duration
	breakerInterval time.Duration
}

var _ Provider = (*Client)(nil)

// New creates a client for baseURL authenticated with apiKey.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("weather: invalid base url %q", baseURL)
	}

	c := &Client{
		baseURL:         u,
		apiKey:          apiKey,
		http:            &http.Client{},
		timeout:         defaultTimeout,
		maxRetries:      defaultMaxRetries,
		retryInterval:   defaultRetryInterval,
		breakerFailures: defaultBreakerFailures,
		breakerOpen:     defaultBreakerOpen,
		breakerInterval: defaultBreakerInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("weather")
	}

	failures := uint32(c.breakerFailures)
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "openweathermap",
		Interval: c.breakerInterval,
		Timeout:  c.breakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// An unknown city is a client problem, not a provider outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrDataUnavailable) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateWeatherBreakerState(int(to))
			c.logger.Warn(context.Background(), "weather breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	metrics.UpdateWeatherBreakerState(int(gobreaker.StateClosed))
	return c, nil
}

// Current fetches the weather for city in metric units. It retries transient
// failures up to the configured count; ErrDataUnavailable is never retried.
func (c *Client) Current(ctx context.Context, city string) (model.WeatherSnapshot, error) {
	start := time.Now()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)

	attempt := 0
	snap, err := backoff.RetryWithData(func() (model.WeatherSnapshot, error) {
		attempt++
		if attempt > 1 {
			metrics.RecordWeatherRetry()
		}
		res, err := c.breaker.Execute(func() (any, error) {
			return c.fetch(ctx, city)
		})
		if err != nil {
			var re *retryableError
			if errors.As(err, &re) {
				return model.WeatherSnapshot{}, err
			}
			return model.WeatherSnapshot{}, backoff.Permanent(err)
		}
		return res.(model.WeatherSnapshot), nil
	}, b)

	latencyMs := metrics.Milliseconds(time.Since(start))
	if err != nil {
		outcome := "upstream_error"
		if errors.Is(err, ErrDataUnavailable) {
			outcome = "unavailable"
		} else {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				outcome = "breaker_open"
			}
			if !errors.Is(err, ErrUpstream) {
				err = fmt.Errorf("%w: %w", ErrUpstream, err)
			}
		}
		metrics.RecordWeatherRequest(outcome, latencyMs)
		c.logger.Warn(ctx, "weather lookup failed",
			logger.String("city", city),
			logger.Int("attempts", attempt),
			logger.String("outcome", outcome),
			logger.Error(err),
		)
		return model.WeatherSnapshot{}, err
	}

	metrics.RecordWeatherRequest("ok", latencyMs)
	c.logger.Debug(ctx, "weather fetched",
		logger.String("city", city),
		logger.Float64("temperature", snap.Temperature),
		logger.String("condition", snap.Condition),
		logger.Int("attempts", attempt),
	)
	return snap, nil
}

// fetch performs a single provider call.
func (c *Client) fetch(ctx context.Context, city string) (model.WeatherSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.baseURL
	q := u.Query()
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", units)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("%w: build request: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return model.WeatherSnapshot{}, err
		}
		return model.WeatherSnapshot{}, &retryableError{err: fmt.Errorf("%w: %w", ErrUpstream, scrubKey(err, c.apiKey))}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.WeatherSnapshot{}, fmt.Errorf("%w: city %q not found", ErrDataUnavailable, city)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return model.WeatherSnapshot{}, &retryableError{err: statusError(resp)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return model.WeatherSnapshot{}, statusError(resp)
	}

	var out owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("%w: decode: %w", ErrUpstream, err)
	}
	if out.Main == nil || out.Main.Temp == nil {
		return model.WeatherSnapshot{}, fmt.Errorf("%w: no temperature for %q", ErrDataUnavailable, city)
	}

	snap := model.WeatherSnapshot{
		City:        city,
		Temperature: *out.Main.Temp,
		Humidity:    out.Main.Humidity,
	}
	if len(out.Weather) > 0 {
		snap.Condition = out.Weather[0].Description
	}
	return snap, nil
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(b)))
}

// scrubKey removes the API key from transport errors, which embed the URL.
func scrubKey(err error, key string) error {
	msg := err.Error()
	if !strings.Contains(msg, key) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, key, "***"))
}

// State exposes the breaker state for readiness reporting.
func (c *Client) State() string {
	return c.breaker.State().String()
}
