// internal/common/observability/tracing.go
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewOTLPProcessor builds a batching span processor that ships spans to an
// OTLP/gRPC collector. An empty endpoint returns nil, nil.
func NewOTLPProcessor(ctx context.Context, endpoint string, insecure bool) (sdktrace.SpanProcessor, error) {
	if endpoint == "" {
		return nil, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp trace exporter: %w", err)
	}
	return sdktrace.NewBatchSpanProcessor(exporter), nil
}
