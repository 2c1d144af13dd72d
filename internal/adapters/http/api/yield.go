package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/agrocast/internal/app"
	"github.com/okian/agrocast/internal/domain/model"
)

// YieldDependencies defines what the yield handler needs.
type YieldDependencies interface {
	PredictYield(ctx context.Context, req model.YieldRequest) (model.YieldResult, error)
}

// YieldHandler handles yield prediction requests.
type YieldHandler struct {
	deps YieldDependencies
}

// NewYieldHandler creates a new yield handler.
func NewYieldHandler(deps YieldDependencies) *YieldHandler {
	return &YieldHandler{deps: deps}
}

type yieldResponse struct {
	PredictedYield float64 `json:"predicted_yield"`
	Crop           *string `json:"crop,omitempty"`
	City           string  `json:"city"`
	Temperature    float64 `json:"temperature"`
	Rainfall       float64 `json:"rainfall"`
	Fertilizer     float64 `json:"fertilizer"`
}

// HandlePredict handles POST /predict-yield requests.
func (h *YieldHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_yield"
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, op, http.MethodPost)
		return
	}

	p, err := readParams(r)
	if err != nil {
		writeFailure(r.Context(), w, op, WrapKind(op, ErrUnprocessable, err))
		return
	}
	rainfall, err := p.float("rainfall")
	if err != nil {
		writeFailure(r.Context(), w, op, WrapKind(op, ErrUnprocessable, err))
		return
	}
	fertilizer, err := p.float("fertilizer")
	if err != nil {
		writeFailure(r.Context(), w, op, WrapKind(op, ErrUnprocessable, err))
		return
	}
	city, err := p.required("city")
	if err != nil {
		writeFailure(r.Context(), w, op, WrapKind(op, ErrUnprocessable, err))
		return
	}

	res, err := h.deps.PredictYield(r.Context(), model.YieldRequest{
		Crop:       p.optional("crop"),
		Rainfall:   rainfall,
		Fertilizer: fertilizer,
		City:       city,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCrop) {
			writeDetail(w, http.StatusBadRequest, msgYieldInvalidCrop)
			return
		}
		writeFailure(r.Context(), w, op, err)
		return
	}

	writeJSON(w, http.StatusOK, yieldResponse{
		PredictedYield: res.PredictedYield,
		Crop:           cropName(res.Crop),
		City:           res.City,
		Temperature:    res.Temperature,
		Rainfall:       res.Rainfall,
		Fertilizer:     res.Fertilizer,
	})
}
