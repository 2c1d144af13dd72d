// Package irrigation turns a raw water-need estimate into a recommendation by
// applying weather and crop adjustments.
package irrigation

import (
	"math"
	"strings"

	"github.com/okian/agrocast/internal/domain/crop"
)

// Thresholds are inclusive as written: <= lowTempMax, >= highHumidityMin,
// >= hotTempMin, < dryHumidityMax.
const (
	lowTempMax      = 18.0
	highHumidityMin = 60.0
	hotTempMin      = 35.0
	dryHumidityMax  = 40.0

	lowTempFactor      = 0.7
	highHumidityFactor = 0.8
	hotDryFactor       = 1.2
)

// Reasons reported to clients.
const (
	ReasonRain         = "Rain detected in weather forecast"
	ReasonLowTemp      = "Low temperature"
	ReasonHighHumidity = "High humidity"
	ReasonHotDry       = "Hot and dry conditions"
	ReasonOptimal      = "Optimal conditions"
)

// Rule identifies an adjustment that fired.
type Rule string

const (
	RuleRain         Rule = "rain"
	RuleCropFactor   Rule = "crop_factor"
	RuleLowTemp      Rule = "low_temperature"
	RuleHighHumidity Rule = "high_humidity"
	RuleHotDry       Rule = "hot_dry"
)

// Input holds everything the adjuster needs. Crop and Humidity are optional.
type Input struct {
	RawEstimate float64
	Crop        *crop.Crop
	Temperature float64
	Humidity    *float64
	Condition   string
}

// Recommendation is the adjusted water amount and its justification.
type Recommendation struct {
	WaterMM      float64
	Reason       string
	RainDetected bool
	Rules        []Rule
}

// Adjust applies the rules in order. Multipliers compound; rain discards all
// of them. It performs no I/O and is safe for concurrent use.
func Adjust(in Input) Recommendation {
	if strings.Contains(strings.ToLower(in.Condition), "rain") {
		return Recommendation{
			WaterMM:      0,
			Reason:       ReasonRain,
			RainDetected: true,
			Rules:        []Rule{RuleRain},
		}
	}

	water := in.RawEstimate
	var (
		reasons []string
		rules   []Rule
	)

	if in.Crop != nil {
		water *= in.Crop.WaterFactor()
		rules = append(rules, RuleCropFactor)
	}

	if in.Temperature <= lowTempMax {
		water *= lowTempFactor
		reasons = append(reasons, ReasonLowTemp)
		rules = append(rules, RuleLowTemp)
	}

	if in.Humidity != nil && *in.Humidity >= highHumidityMin {
		water *= highHumidityFactor
		reasons = append(reasons, ReasonHighHumidity)
		rules = append(rules, RuleHighHumidity)
	}

	// Without a humidity reading the dryness half of the rule cannot be
	// checked, so heat alone decides.
	if in.Temperature >= hotTempMin && (in.Humidity == nil || *in.Humidity < dryHumidityMax) {
		water *= hotDryFactor
		reasons = append(reasons, ReasonHotDry)
		rules = append(rules, RuleHotDry)
	}

	reason := ReasonOptimal
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}

	return Recommendation{
		WaterMM: Round2(water),
		Reason:  reason,
		Rules:   rules,
	}
}

// Round2 rounds v to two decimal places, ties to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
