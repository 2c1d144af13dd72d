// Package yield assembles the feature set of the yield model.
package yield

import (
	"github.com/okian/agrocast/internal/domain/crop"
	"github.com/okian/agrocast/internal/domain/irrigation"
)

// Feature names the yield model may be trained with.
const (
	FeatureRainfall    = "rainfall"
	FeatureTemperature = "temperature"
	FeatureFertilizer  = "fertilizer"
	FeatureCrop        = "crop"
)

// Features returns the named inputs of a yield prediction. The crop code is
// included only when c is set.
func Features(rainfall, temperature, fertilizer float64, c *crop.Crop) map[string]float64 {
	f := map[string]float64{
		FeatureRainfall:    rainfall,
		FeatureTemperature: temperature,
		FeatureFertilizer:  fertilizer,
	}
	if c != nil {
		f[FeatureCrop] = float64(c.Code())
	}
	return f
}

// Round rounds a raw model output for the response.
func Round(v float64) float64 {
	return irrigation.Round2(v)
}
