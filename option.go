package taskctx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/afs"
	"github.com/viant/taskctx/service/umbilical"
	"github.com/viant/taskctx/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service.
type Option func(s *Service)

// WithConfig sets the configuration; DefaultConfig is used otherwise.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithRegisterer registers the service metrics with registerer.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(s *Service) {
		s.registerer = registerer
	}
}

// WithUmbilical replaces the in-process umbilical.
func WithUmbilical(u umbilical.Umbilical) Option {
	return func(s *Service) {
		s.umbilical = u
	}
}

// WithFS sets the storage service used by the failure journal.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithHostName overrides the host name reported in the execution context.
func WithHostName(name string) Option {
	return func(s *Service) {
		s.hostName = name
	}
}

// WithAuxServiceEnv sets the environment auxiliary services publish their
// provider data into. The process environment is used otherwise.
func WithAuxServiceEnv(env map[string]string) Option {
	return func(s *Service) {
		s.auxServiceEnv = env
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
// The first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
