// Package service provides the prediction service behind the HTTP API. It
// combines a weather lookup, a regression model and, for irrigation, the
// rule-based adjuster.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/agrocast/internal/adapters/regression"
	"github.com/okian/agrocast/internal/adapters/weather"
	"github.com/okian/agrocast/internal/domain/crop"
	"github.com/okian/agrocast/internal/domain/irrigation"
	"github.com/okian/agrocast/internal/domain/model"
	"github.com/okian/agrocast/internal/domain/yield"
	"github.com/okian/agrocast/pkg/logger"
	"github.com/okian/agrocast/pkg/metrics"
)

// Endpoint labels used in metrics and logs.
const (
	EndpointIrrigation = "irrigation"
	EndpointYield      = "yield"
)

// Feature names of the irrigation model.
const (
	FeatureSoilMoisture = "soil_moisture"
	FeatureTemperature  = "temperature"
)

const (
	defaultIrrigationModelPath = "models/irrigation_model.yaml"
	defaultYieldModelPath      = "models/yield_model.yaml"
)

// Service implements the API dependencies for both prediction endpoints.
type Service struct {
	mu sync.RWMutex

	weather         weather.Provider
	irrigationModel regression.Predictor
	yieldModel      regression.Predictor

	irrigationPath string
	yieldPath      string

	// Set when Start read the artifact itself, so Stop may drop it.
	irrigationLoaded bool
	yieldLoaded      bool

	started   bool
	startedAt time.Time

	irrigationServed atomic.Int64
	yieldServed      atomic.Int64
	rainShortCircuit atomic.Int64
	failures         atomic.Int64

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		irrigationPath: defaultIrrigationModelPath,
		yieldPath:      defaultYieldModelPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads any model that was not injected. A missing or invalid artifact
// is returned as an error; callers should refuse to serve.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.weather == nil {
		return fmt.Errorf("%w: no weather provider configured", ErrNotReady)
	}

	s.logger.Info(ctx, "starting prediction service...")

	if s.irrigationModel == nil {
		m, err := regression.Load(ctx, s.irrigationPath,
			regression.WithName(EndpointIrrigation),
			regression.WithRequiredFeatures(FeatureSoilMoisture, FeatureTemperature),
		)
		if err != nil {
			return fmt.Errorf("load irrigation model: %w", err)
		}
		s.irrigationModel = m
		s.irrigationLoaded = true
	}
	if s.yieldModel == nil {
		m, err := regression.Load(ctx, s.yieldPath,
			regression.WithName(EndpointYield),
			regression.WithRequiredFeatures(yield.FeatureRainfall, yield.FeatureTemperature, yield.FeatureFertilizer),
		)
		if err != nil {
			return fmt.Errorf("load yield model: %w", err)
		}
		s.yieldModel = m
		s.yieldLoaded = true
	}

	s.started = true
	s.startedAt = time.Now()
	metrics.UpdateModelsLoaded(2)
	s.logger.Info(ctx, "prediction service started",
		logger.String("irrigationModel", s.irrigationModel.Name()),
		logger.String("irrigationFeatures", strings.Join(s.irrigationModel.Features(), ",")),
		logger.String("yieldModel", s.yieldModel.Name()),
		logger.String("yieldFeatures", strings.Join(s.yieldModel.Features(), ",")),
	)
	return nil
}

// Stop marks the service as not ready and releases models it loaded.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.irrigationLoaded {
		s.irrigationModel = nil
		s.irrigationLoaded = false
	}
	if s.yieldLoaded {
		s.yieldModel = nil
		s.yieldLoaded = false
	}
	s.started = false
	metrics.UpdateModelsLoaded(0)
	s.logger.Info(context.Background(), "prediction service stopped")
}

// Ready reports whether both models are loaded and requests can be served.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started && s.irrigationModel != nil && s.yieldModel != nil
}

func (s *Service) models() (regression.Predictor, regression.Predictor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotReady
	}
	return s.irrigationModel, s.yieldModel, nil
}

// PredictIrrigation recommends an irrigation amount for the crop at city.
// An invalid crop is rejected before any weather lookup.
func (s *Service) PredictIrrigation(ctx context.Context, req model.IrrigationRequest) (model.IrrigationResult, error) {
	start := time.Now()
	res, err := s.predictIrrigation(ctx, req)
	s.finish(ctx, EndpointIrrigation, start, err)
	if err != nil {
		return model.IrrigationResult{}, err
	}

	s.irrigationServed.Add(1)
	if res.RainDetected {
		s.rainShortCircuit.Add(1)
	}
	metrics.RecordRecommendedWater(res.RecommendedWaterMM)
	s.logger.Info(ctx, "irrigation predicted",
		logger.String("city", res.City),
		logger.Float64("recommendedWaterMM", res.RecommendedWaterMM),
		logger.String("reason", res.Reason),
	)
	return res, nil
}

func (s *Service) predictIrrigation(ctx context.Context, req model.IrrigationRequest) (model.IrrigationResult, error) {
	c, err := parseOptionalCrop(req.Crop)
	if err != nil {
		return model.IrrigationResult{}, err
	}
	if err := checkInputs(req.City, req.SoilMoisture); err != nil {
		return model.IrrigationResult{}, err
	}
	irrigationModel, _, err := s.models()
	if err != nil {
		return model.IrrigationResult{}, err
	}

	snap, err := s.currentWeather(ctx, req.City)
	if err != nil {
		return model.IrrigationResult{}, err
	}

	raw, err := s.predict(ctx, irrigationModel, map[string]float64{
		FeatureSoilMoisture: req.SoilMoisture,
		FeatureTemperature:  snap.Temperature,
	})
	if err != nil {
		return model.IrrigationResult{}, err
	}

	rec := irrigation.Adjust(irrigation.Input{
		RawEstimate: raw,
		Crop:        c,
		Temperature: snap.Temperature,
		Humidity:    snap.Humidity,
		Condition:   snap.Condition,
	})
	for _, r := range rec.Rules {
		metrics.RecordRuleFired(string(r))
	}
	s.logger.Debug(ctx, "irrigation adjusted",
		logger.Float64("rawEstimate", raw),
		logger.Float64("temperature", snap.Temperature),
		logger.String("condition", snap.Condition),
		logger.Int("rulesFired", len(rec.Rules)),
	)

	return model.IrrigationResult{
		RecommendedWaterMM: rec.WaterMM,
		Crop:               c,
		City:               req.City,
		Temperature:        snap.Temperature,
		Humidity:           snap.Humidity,
		Weather:            snap.Condition,
		Reason:             rec.Reason,
		RainDetected:       rec.RainDetected,
	}, nil
}

// PredictYield estimates crop yield from rainfall, fertilizer and the current
// temperature at city.
func (s *Service) PredictYield(ctx context.Context, req model.YieldRequest) (model.YieldResult, error) {
	start := time.Now()
	res, err := s.predictYield(ctx, req)
	s.finish(ctx, EndpointYield, start, err)
	if err != nil {
		return model.YieldResult{}, err
	}

	s.yieldServed.Add(1)
	metrics.RecordPredictedYield(res.PredictedYield)
	s.logger.Info(ctx, "yield predicted",
		logger.String("city", res.City),
		logger.Float64("predictedYield", res.PredictedYield),
	)
	return res, nil
}

func (s *Service) predictYield(ctx context.Context, req model.YieldRequest) (model.YieldResult, error) {
	c, err := parseOptionalCrop(req.Crop)
	if err != nil {
		return model.YieldResult{}, err
	}
	if err := checkInputs(req.City, req.Rainfall, req.Fertilizer); err != nil {
		return model.YieldResult{}, err
	}
	_, yieldModel, err := s.models()
	if err != nil {
		return model.YieldResult{}, err
	}
	if c == nil && yieldModel.Requires(yield.FeatureCrop) {
		return model.YieldResult{}, ErrMissingCrop
	}

	snap, err := s.currentWeather(ctx, req.City)
	if err != nil {
		return model.YieldResult{}, err
	}

	raw, err := s.predict(ctx, yieldModel, yield.Features(req.Rainfall, snap.Temperature, req.Fertilizer, c))
	if err != nil {
		return model.YieldResult{}, err
	}

	return model.YieldResult{
		PredictedYield: yield.Round(raw),
		Crop:           c,
		City:           req.City,
		Temperature:    snap.Temperature,
		Rainfall:       req.Rainfall,
		Fertilizer:     req.Fertilizer,
	}, nil
}

func (s *Service) currentWeather(ctx context.Context, city string) (model.WeatherSnapshot, error) {
	snap, err := s.weather.Current(ctx, city)
	switch {
	case err == nil:
		return snap, nil
	case errors.Is(err, weather.ErrDataUnavailable):
		return model.WeatherSnapshot{}, fmt.Errorf("%w: %w", ErrWeatherUnavailable, err)
	case errors.Is(err, context.Canceled):
		return model.WeatherSnapshot{}, err
	default:
		return model.WeatherSnapshot{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
}

func (s *Service) predict(ctx context.Context, m regression.Predictor, features map[string]float64) (float64, error) {
	start := time.Now()
	v, err := m.Predict(ctx, features)
	metrics.RecordModelLatency(m.Name(), metrics.Milliseconds(time.Since(start)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPrediction, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s returned %v", ErrPrediction, m.Name(), v)
	}
	return v, nil
}

// finish records the outcome of one prediction.
func (s *Service) finish(ctx context.Context, endpoint string, start time.Time, err error) {
	latencyMs := metrics.Milliseconds(time.Since(start))
	outcome := outcomeOf(err)
	metrics.RecordPrediction(endpoint, outcome, latencyMs)
	if err == nil {
		return
	}
	s.failures.Add(1)
	metrics.RecordErrorByComponent(endpoint, outcome)
	if s.logger == nil {
		return
	}
	fields := []logger.Field{logger.String("endpoint", endpoint), logger.String("outcome", outcome), logger.Error(err)}
	switch outcome {
	case "upstream_error", "prediction_error", "not_ready":
		s.logger.Error(ctx, "prediction failed", fields...)
	default:
		s.logger.Debug(ctx, "prediction rejected", fields...)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidCrop):
		return "invalid_crop"
	case errors.Is(err, ErrMissingCrop), errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrWeatherUnavailable):
		return "weather_unavailable"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrNotReady):
		return "not_ready"
	case errors.Is(err, ErrPrediction):
		return "prediction_error"
	default:
		return "error"
	}
}

// parseOptionalCrop returns nil for an empty name.
func parseOptionalCrop(name string) (*crop.Crop, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	c, err := crop.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCrop, err)
	}
	return &c, nil
}

func checkInputs(city string, values ...float64) error {
	if strings.TrimSpace(city) == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidInput)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite number", ErrInvalidInput)
		}
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":             s.started,
		"irrigationServed":    s.irrigationServed.Load(),
		"yieldServed":         s.yieldServed.Load(),
		"rainShortCircuits":   s.rainShortCircuit.Load(),
		"failedPredictions":   s.failures.Load(),
		"irrigationModelPath": s.irrigationPath,
		"yieldModelPath":      s.yieldPath,
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["irrigationFeatures"] = s.irrigationModel.Features()
		stats["yieldFeatures"] = s.yieldModel.Features()
	}
	if b, ok := s.weather.(interface{ State() string }); ok {
		stats["weatherBreaker"] = b.State()
	}
	return stats
}
