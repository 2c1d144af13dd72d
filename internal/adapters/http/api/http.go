// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/agrocast/internal/app"
	"github.com/okian/agrocast/internal/domain/crop"
	"github.com/okian/agrocast/internal/domain/model"
	"github.com/okian/agrocast/pkg/logger"
)

// Client-visible messages. The two invalid-crop messages differ per endpoint
// and are part of the public contract.
const (
	msgIrrigationInvalidCrop = "Crop must be wheat, rice, or maize"
	msgYieldInvalidCrop      = "Invalid crop. Choose from wheat, rice, or maize."
	msgWeatherUnavailable    = "Weather data not available"
	msgWeatherUpstream       = "Weather service unavailable"
	msgNotReady              = "Service not ready"
	msgInternal              = "Internal server error"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	PredictIrrigation(ctx context.Context, req model.IrrigationRequest) (model.IrrigationResult, error)
	PredictYield(ctx context.Context, req model.YieldRequest) (model.YieldResult, error)
	Ready() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	irrigationHandler *IrrigationHandler
	yieldHandler      *YieldHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(deps),
		statsHandler:      NewStatsHandler(statsProvider),
		irrigationHandler: NewIrrigationHandler(deps),
		yieldHandler:      NewYieldHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/predict-irrigation", RequestIDMiddleware(MetricsMiddleware(s.irrigationHandler.HandlePredict, "predict_irrigation")))
	mux.HandleFunc("/predict-yield", RequestIDMiddleware(MetricsMiddleware(s.yieldHandler.HandlePredict, "predict_yield")))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type detailResponse struct {
	Detail string `json:"detail"`
}

// errorFieldResponse is the 200-status body of an irrigation request with an
// unsupported crop.
type errorFieldResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request, op string, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeFailure(r.Context(), w, op, NewKind(op, ErrMethodNotAllowed))
}

// writeFailure maps a prediction error to its status and detail message.
// Invalid crops are handled by each endpoint before reaching here.
func writeFailure(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		writeDetail(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	case errors.Is(err, ErrUnprocessable):
		writeDetail(w, http.StatusUnprocessableEntity, causeOf(err))
	case errors.Is(err, service.ErrMissingCrop):
		writeDetail(w, http.StatusUnprocessableEntity, "missing required parameter: crop")
	case errors.Is(err, service.ErrInvalidInput):
		writeDetail(w, http.StatusUnprocessableEntity, strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": "))
	case errors.Is(err, service.ErrWeatherUnavailable):
		writeDetail(w, http.StatusBadRequest, msgWeatherUnavailable)
	case errors.Is(err, service.ErrUpstream):
		writeDetail(w, http.StatusBadGateway, msgWeatherUpstream)
	case errors.Is(err, service.ErrNotReady):
		writeDetail(w, http.StatusServiceUnavailable, msgNotReady)
	default:
		logger.Named("api").Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeDetail(w, http.StatusInternalServerError, msgInternal)
	}
}

// causeOf returns the innermost message of a KindError.
func causeOf(err error) string {
	var ke *KindError
	if errors.As(err, &ke) && ke.Err != nil {
		return ke.Err.Error()
	}
	return err.Error()
}

func cropName(c *crop.Crop) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}
