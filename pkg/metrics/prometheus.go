// Package metrics provides Prometheus metrics for the agrocast prediction service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the agrocast service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Prediction metrics
	predictions       *prometheus.CounterVec
	predictionLatency *prometheus.HistogramVec
	rulesFired        *prometheus.CounterVec
	recommendedWater  prometheus.Histogram
	predictedYield    prometheus.Histogram
	modelLatency      *prometheus.HistogramVec
	modelsLoaded      prometheus.Gauge

	// Weather provider metrics
	weatherRequests     *prometheus.CounterVec
	weatherLatency      prometheus.Histogram
	weatherRetries      prometheus.Counter
	weatherBreakerState prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "agrocast",
		subsystem:        "predictor",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every series
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Predictions served by endpoint and outcome"),
		[]string{"endpoint", "outcome"},
	)
	m.predictionLatency = auto.NewHistogramVec(
		m.histogramOpts("prediction_latency_milliseconds", "End-to-end prediction latency in milliseconds", m.histogramBuckets),
		[]string{"endpoint"},
	)
	m.rulesFired = auto.NewCounterVec(
		m.counterOpts("irrigation_rules_fired_total", "Irrigation adjustment rules applied"),
		[]string{"rule"},
	)
	m.recommendedWater = auto.NewHistogram(
		m.histogramOpts("recommended_water_mm", "Distribution of recommended irrigation water in mm",
			[]float64{0, 2, 5, 10, 15, 20, 30, 40, 60, 80}),
	)
	m.predictedYield = auto.NewHistogram(
		m.histogramOpts("predicted_yield", "Distribution of predicted yield",
			[]float64{0, 1, 2, 3, 4, 5, 6, 8, 10, 15}),
	)
	m.modelLatency = auto.NewHistogramVec(
		m.histogramOpts("model_inference_latency_milliseconds", "Regression inference latency in milliseconds",
			[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}),
		[]string{"model"},
	)
	m.modelsLoaded = auto.NewGauge(
		m.gaugeOpts("models_loaded", "Number of regression models loaded"),
	)

	m.weatherRequests = auto.NewCounterVec(
		m.counterOpts("weather_requests_total", "Weather lookups by outcome"),
		[]string{"outcome"},
	)
	m.weatherLatency = auto.NewHistogram(
		m.histogramOpts("weather_latency_milliseconds", "Weather lookup latency in milliseconds, retries included",
			[]float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}),
	)
	m.weatherRetries = auto.NewCounter(
		m.counterOpts("weather_retries_total", "Weather lookups retried after a transient failure"),
	)
	m.weatherBreakerState = auto.NewGauge(
		m.gaugeOpts("weather_breaker_state", "Weather circuit breaker state (0 closed, 1 half-open, 2 open)"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordPrediction counts a prediction on endpoint with the given outcome
// and observes its latency.
func RecordPrediction(endpoint, outcome string, latencyMs float64) {
	globalManager.predictions.WithLabelValues(endpoint, outcome).Inc()
	globalManager.predictionLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordRuleFired increments the counter for an irrigation adjustment rule.
func RecordRuleFired(rule string) {
	globalManager.rulesFired.WithLabelValues(rule).Inc()
}

// RecordRecommendedWater observes a final irrigation recommendation.
func RecordRecommendedWater(mm float64) {
	globalManager.recommendedWater.Observe(mm)
}

// RecordPredictedYield observes a final yield prediction.
func RecordPredictedYield(v float64) {
	globalManager.predictedYield.Observe(v)
}

// RecordModelLatency records regression inference latency.
func RecordModelLatency(model string, latencyMs float64) {
	globalManager.modelLatency.WithLabelValues(model).Observe(latencyMs)
}

// UpdateModelsLoaded sets the number of loaded models.
func UpdateModelsLoaded(n int) {
	globalManager.modelsLoaded.Set(float64(n))
}

// RecordWeatherRequest counts a weather lookup and observes its latency.
func RecordWeatherRequest(outcome string, latencyMs float64) {
	globalManager.weatherRequests.WithLabelValues(outcome).Inc()
	globalManager.weatherLatency.Observe(latencyMs)
}

// RecordWeatherRetry increments the weather retry counter.
func RecordWeatherRetry() {
	globalManager.weatherRetries.Inc()
}

// UpdateWeatherBreakerState sets the breaker state gauge.
func UpdateWeatherBreakerState(state int) {
	globalManager.weatherBreakerState.Set(float64(state))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// Milliseconds converts d for the *_milliseconds series, keeping
// sub-millisecond precision.
func Milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before any series is recorded or
// GetRegistry is handed to an exporter.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
