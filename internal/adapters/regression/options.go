package regression

// Option applies a configuration option to a Linear model during Load.
type Option func(*Linear)

// WithName overrides the name recorded in the artifact.
func WithName(name string) Option {
	return func(m *Linear) {
		if name != "" {
			m.name = name
		}
	}
}

// WithRequiredFeatures makes Load fail unless the artifact declares every
// listed feature.
func WithRequiredFeatures(features ...string) Option {
	return func(m *Linear) {
		m.required = append(m.required, features...)
	}
}
