// Package regression loads exported linear regression models and evaluates them.
package regression

import "context"

// Predictor evaluates a trained model on named features.
type Predictor interface {
	// Predict returns the model output for features, which must contain every
	// feature the model was trained with. Extra keys are ignored.
	Predict(ctx context.Context, features map[string]float64) (float64, error)

	// Features lists the model inputs in training order.
	Features() []string

	// Requires reports whether feature is one of the model inputs.
	Requires(feature string) bool

	// Name identifies the model in logs and metrics.
	Name() string
}
