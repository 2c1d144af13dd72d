package regression

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gonum.org/v1/gonum/floats"
)

// artifact mirrors the exported model document:
//
//	name: irrigation
//	features: [soil_moisture, temperature]
//	coefficients: [-0.21, 0.48]
//	intercept: 3.5
//
// JSON documents with the same keys parse as well.
type artifact struct {
	Name         string    `koanf:"name"`
	Features     []string  `koanf:"features"`
	Coefficients []float64 `koanf:"coefficients"`
	Intercept    float64   `koanf:"intercept"`
}

// Linear is an immutable ordinary-least-squares model: intercept + coef·x.
type Linear struct {
	name         string
	features     []string
	coefficients []float64
	intercept    float64
	required     []string
}

var _ Predictor = (*Linear)(nil)

// Load reads and validates the artifact at path.
func Load(_ context.Context, path string, opts ...Option) (*Linear, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("stat model %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, path, err)
	}
	var a artifact
	if err := k.UnmarshalWithConf("", &a, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, path, err)
	}

	m := &Linear{
		name:         a.Name,
		features:     a.Features,
		coefficients: a.Coefficients,
		intercept:    a.Intercept,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, path, err)
	}
	return m, nil
}

// NewLinear builds a model in memory, applying the same validation as Load.
func NewLinear(name string, features []string, coefficients []float64, intercept float64) (*Linear, error) {
	m := &Linear{
		name:         name,
		features:     slices.Clone(features),
		coefficients: slices.Clone(coefficients),
		intercept:    intercept,
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	return m, nil
}

func (m *Linear) validate() error {
	if len(m.features) == 0 {
		return errors.New("no features declared")
	}
	if len(m.coefficients) != len(m.features) {
		return fmt.Errorf("%d coefficients for %d features", len(m.coefficients), len(m.features))
	}
	seen := make(map[string]struct{}, len(m.features))
	for _, f := range m.features {
		if f == "" {
			return errors.New("empty feature name")
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("duplicate feature %q", f)
		}
		seen[f] = struct{}{}
	}
	for _, f := range m.required {
		if _, ok := seen[f]; !ok {
			return fmt.Errorf("required feature %q not declared", f)
		}
	}
	if floats.HasNaN(m.coefficients) || math.IsNaN(m.intercept) {
		return errors.New("NaN parameter")
	}
	for _, c := range append([]float64{m.intercept}, m.coefficients...) {
		if math.IsInf(c, 0) {
			return errors.New("infinite parameter")
		}
	}
	return nil
}

// Predict implements Predictor.
func (m *Linear) Predict(ctx context.Context, features map[string]float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x := make([]float64, len(m.features))
	for i, name := range m.features {
		v, ok := features[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s needs %q", ErrMissingFeature, m.name, name)
		}
		x[i] = v
	}
	return m.intercept + floats.Dot(m.coefficients, x), nil
}

// Features implements Predictor.
func (m *Linear) Features() []string { return slices.Clone(m.features) }

// Name implements Predictor.
func (m *Linear) Name() string { return m.name }

// Requires reports whether the model was trained with feature.
func (m *Linear) Requires(feature string) bool {
	return slices.Contains(m.features, feature)
}
