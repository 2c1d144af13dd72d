package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/agrocast/internal/app"
	"github.com/okian/agrocast/internal/domain/model"
)

// IrrigationDependencies defines what the irrigation handler needs.
type IrrigationDependencies interface {
	PredictIrrigation(ctx context.Context, req model.IrrigationRequest) (model.IrrigationResult, error)
}

// IrrigationHandler handles irrigation prediction requests.
type IrrigationHandler struct {
	deps IrrigationDependencies
}

// NewIrrigationHandler creates a new irrigation handler.
func NewIrrigationHandler(deps IrrigationDependencies) *IrrigationHandler {
	return &IrrigationHandler{deps: deps}
}

type irrigationResponse struct {
	RecommendedWaterMM float64  `json:"recommended_water_mm"`
	Crop               *string  `json:"crop,omitempty"`
	City               string   `json:"city"`
	Temperature        float64  `json:"temperature"`
	Humidity           *float64 `json:"humidity,omitempty"`
	Weather            string   `json:"weather"`
	Reason             string   `json:"reason"`
}

// rainResponse is the short-circuit body; it carries exactly these fields.
type rainResponse struct {
	RecommendedWaterMM float64 `json:"recommended_water_mm"`
	Reason             string  `json:"reason"`
	Weather            string  `json:"weather"`
}

// HandlePredict handles POST /predict-irrigation requests.
func (h *IrrigationHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_irrigation"
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, op, http.MethodPost)
		return
	}

	p, err := readParams(r)
	if err != nil {
		writeFailure(r.Context(), w, op, WrapKind(op, ErrUnprocessable, err))
		return
	}
	soil, err := p.float("soil_moisture")
	if err != nil {
		writeFailure(r.Context(), w, op, WrapKind(op, ErrUnprocessable, err))
		return
	}
	city, err := p.required("city")
	if err != nil {
		writeFailure(r.Context(), w, op, WrapKind(op, ErrUnprocessable, err))
		return
	}

	res, err := h.deps.PredictIrrigation(r.Context(), model.IrrigationRequest{
		SoilMoisture: soil,
		Crop:         p.optional("crop"),
		City:         city,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCrop) {
			writeJSON(w, http.StatusOK, errorFieldResponse{Error: msgIrrigationInvalidCrop})
			return
		}
		writeFailure(r.Context(), w, op, err)
		return
	}

	if res.RainDetected {
		writeJSON(w, http.StatusOK, rainResponse{
			RecommendedWaterMM: res.RecommendedWaterMM,
			Reason:             res.Reason,
			Weather:            res.Weather,
		})
		return
	}
	writeJSON(w, http.StatusOK, irrigationResponse{
		RecommendedWaterMM: res.RecommendedWaterMM,
		Crop:               cropName(res.Crop),
		City:               res.City,
		Temperature:        res.Temperature,
		Humidity:           res.Humidity,
		Weather:            res.Weather,
		Reason:             res.Reason,
	})
}
