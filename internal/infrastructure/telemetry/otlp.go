package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ServiceVersion is reported as the service.version resource attribute
const ServiceVersion = "1.0.0"

// shutdownTimeout bounds the final flush of every provider
const shutdownTimeout = 10 * time.Second

// collector is the OTLP gRPC destination shared by traces, metrics and logs
type collector struct {
	endpoint string
	insecure bool
	resource *resource.Resource
}

func newCollector(endpoint, serviceName string, insecure bool) (*collector, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("collector endpoint is required")
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return &collector{endpoint: endpoint, insecure: insecure, resource: res}, nil
}

// shutdownWithin runs shutdown with a bounded deadline derived from ctx
func shutdownWithin(ctx context.Context, what string, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown %s: %w", what, err)
	}
	return nil
}
