// Package tracer configures OpenTelemetry tracing for the library.
//
// A Tracer exports spans over OTLP/HTTP and registers itself as the global
// trace provider, so the generator and aligner packages can open spans around
// their long-running operations without holding a reference to it.
//
// Tracing is opt-in: when TRACER_OTLP_ENDPOINT is unset, NewClient returns a
// disabled Tracer whose spans are no-ops.
package tracer

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Config controls tracer construction.
type Config struct {
	// Endpoint is the OTLP/HTTP collector endpoint (host:port, no scheme).
	// Empty disables tracing entirely.
	Endpoint string

	// ServiceName identifies this process in exported traces.
	ServiceName string

	// Insecure disables TLS toward the collector.
	Insecure bool
}

// NewConfig reads the tracer configuration from environment variables.
func NewConfig() Config {
	cfg := Config{
		Endpoint:    os.Getenv("TRACER_OTLP_ENDPOINT"),
		ServiceName: os.Getenv("TRACER_SERVICE_NAME"),
		Insecure:    os.Getenv("TRACER_OTLP_INSECURE") == "true",
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "aesthetic"
	}
	return cfg
}

// Tracer owns the SDK trace provider for this process.
type Tracer struct {
	provider *sdktrace.TracerProvider
}

// NewClient builds the tracer and installs it as the global otel provider.
// With no endpoint configured it returns a disabled Tracer.
func NewClient(cfg Config) (*Tracer, error) {
	if cfg.Endpoint == "" {
		return &Tracer{}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("tracer: failed to create OTLP exporter: %w", err)
	}

	res, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracer: failed to build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return &Tracer{provider: provider}, nil
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
