package loadgen

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/agrocast/internal/domain/crop"
)

// Messages the service must produce verbatim.
const (
	irrigationInvalidCrop = "Crop must be wheat, rice, or maize"
	yieldInvalidCrop      = "Invalid crop. Choose from wheat, rice, or maize."
	weatherUnavailable    = "Weather data not available"
	rainReason            = "Rain detected in weather forecast"
)

func cropValid(req Request) bool {
	c := req.Params.Get("crop")
	if strings.TrimSpace(c) == "" {
		return true
	}
	_, err := crop.Parse(c)
	return err == nil
}

// Verify classifies a response and reports any contract violation.
func Verify(req Request, status int, body map[string]any) (Outcome, error) {
	switch req.Endpoint {
	case EndpointIrrigation:
		return verifyIrrigation(req, status, body)
	case EndpointYield:
		return verifyYield(req, status, body)
	default:
		return OutcomeMismatch, fmt.Errorf("unknown endpoint %q", req.Endpoint)
	}
}

func verifyIrrigation(req Request, status int, body map[string]any) (Outcome, error) {
	if !cropValid(req) {
		if status != http.StatusOK || body["error"] != irrigationInvalidCrop || len(body) != 1 {
			return OutcomeMismatch, fmt.Errorf("invalid crop %q: got %d %v", req.Params.Get("crop"), status, body)
		}
		return OutcomeInvalidCrop, nil
	}
	if status != http.StatusOK {
		return verifyFailure(status, body)
	}
	if body["reason"] == rainReason {
		if len(body) != 3 || body["recommended_water_mm"] != 0.0 || body["weather"] == nil {
			return OutcomeMismatch, fmt.Errorf("rain response has unexpected shape: %v", body)
		}
		return OutcomeRain, nil
	}
	if err := requireKeys(body, "recommended_water_mm", "city", "temperature", "weather", "reason"); err != nil {
		return OutcomeMismatch, err
	}
	if v, _ := body["recommended_water_mm"].(float64); v < 0 {
		return OutcomeMismatch, fmt.Errorf("negative recommendation %v", v)
	}
	return OutcomeRecommendation, nil
}

func verifyYield(req Request, status int, body map[string]any) (Outcome, error) {
	if !cropValid(req) {
		if status != http.StatusBadRequest || body["detail"] != yieldInvalidCrop {
			return OutcomeMismatch, fmt.Errorf("invalid crop %q: got %d %v", req.Params.Get("crop"), status, body)
		}
		return OutcomeInvalidCrop, nil
	}
	if status != http.StatusOK {
		return verifyFailure(status, body)
	}
	if err := requireKeys(body, "predicted_yield", "city", "temperature", "rainfall", "fertilizer"); err != nil {
		return OutcomeMismatch, err
	}
	return OutcomeYield, nil
}

// verifyFailure accepts the documented error statuses, each with a detail.
func verifyFailure(status int, body map[string]any) (Outcome, error) {
	if _, ok := body["detail"].(string); !ok {
		return OutcomeMismatch, fmt.Errorf("status %d without detail: %v", status, body)
	}
	switch status {
	case http.StatusBadRequest:
		if body["detail"] != weatherUnavailable {
			return OutcomeMismatch, fmt.Errorf("unexpected 400 detail %v", body["detail"])
		}
		return OutcomeWeatherUnavailable, nil
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return OutcomeUpstream, nil
	case http.StatusUnprocessableEntity:
		return OutcomeRejected, nil
	default:
		return OutcomeMismatch, fmt.Errorf("unexpected status %d: %v", status, body)
	}
}

func requireKeys(body map[string]any, keys ...string) error {
	for _, k := range keys {
		if _, ok := body[k]; !ok {
			return fmt.Errorf("response missing %q: %v", k, body)
		}
	}
	return nil
}
