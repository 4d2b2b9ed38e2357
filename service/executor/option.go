package executor

import "github.com/viant/taskctx/metrics"

// Option customises a Provider.
type Option func(*Provider)

// WithConfig sets the provider configuration.
func WithConfig(config Config) Option {
	return func(p *Provider) {
		p.config = config
	}
}

// WithMetrics records pool lifecycle in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Provider) {
		p.metrics = m
	}
}
