// Package crop defines the supported crop types and their per-crop constants.
package crop

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCrop is returned when a crop name is not one of the supported values.
var ErrUnknownCrop = errors.New("unknown crop")

// Crop is a supported crop type.
type Crop string

const (
	Wheat Crop = "wheat"
	Rice  Crop = "rice"
	Maize Crop = "maize"
)

// All lists the supported crops in their canonical order.
var All = []Crop{Wheat, Rice, Maize}

var waterFactors = map[Crop]float64{
	Wheat: 1.0,
	Rice:  1.3,
	Maize: 0.9,
}

var codes = map[Crop]int{
	Wheat: 0,
	Rice:  1,
	Maize: 2,
}

// Parse resolves s case-insensitively to a Crop.
func Parse(s string) (Crop, error) {
	c := Crop(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCrop, s)
	}
	return c, nil
}

// WaterFactor is the multiplier applied to a baseline water estimate.
func (c Crop) WaterFactor() float64 { return waterFactors[c] }

// Code is the numeric value the yield model was trained with.
func (c Crop) Code() int { return codes[c] }

// Valid reports whether c is a supported crop.
func (c Crop) Valid() bool {
	_, ok := waterFactors[c]
	return ok
}

func (c Crop) String() string { return string(c) }
