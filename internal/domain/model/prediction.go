// Package model contains domain models passed between layers.
package model

import "github.com/okian/agrocast/internal/domain/crop"

// WeatherSnapshot is the subset of a current-weather lookup the predictors consume.
type WeatherSnapshot struct {
	City        string
	Temperature float64  // °C
	Humidity    *float64 // %, nil when the provider omitted it
	Condition   string   // free-text description, e.g. "light rain"
}

// IrrigationRequest carries the inputs of POST /predict-irrigation.
type IrrigationRequest struct {
	SoilMoisture float64
	Crop         string // optional; empty means no crop factor
	City         string
}

// IrrigationResult is the adjusted water recommendation plus echoed inputs.
type IrrigationResult struct {
	RecommendedWaterMM float64
	Crop               *crop.Crop
	City               string
	Temperature        float64
	Humidity           *float64
	Weather            string
	Reason             string
	RainDetected       bool
}

// YieldRequest carries the inputs of POST /predict-yield.
type YieldRequest struct {
	Crop       string // optional unless the yield model was trained with a crop feature
	Rainfall   float64
	Fertilizer float64
	City       string
}

// YieldResult is the rounded yield prediction plus echoed inputs.
type YieldResult struct {
	PredictedYield float64
	Crop           *crop.Crop
	City           string
	Temperature    float64
	Rainfall       float64
	Fertilizer     float64
}
