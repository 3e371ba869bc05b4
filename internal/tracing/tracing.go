package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"

	"gitlab.com/testpaper/papergen/internal/config"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// endpoint strips the URL scheme, the gRPC exporter expects host:port.
func endpoint(raw string) string {
	for _, scheme := range []string{"http://", "https://"} {
		raw = strings.TrimPrefix(raw, scheme)
	}
	return strings.TrimSuffix(raw, "/")
}

// InitTracer installs a global tracer provider exporting to cfg.Endpoint over OTLP gRPC.
// Without an endpoint tracing stays disabled and the returned shutdown does nothing.
func InitTracer(ctx context.Context, cfg config.Tracing) (ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		return noop, nil
	}

	secureOption := otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, ""))
	if cfg.Insecure {
		secureOption = otlptracegrpc.WithInsecure()
	}

	exporter, err := otlptrace.New(
		ctx,
		otlptracegrpc.NewClient(
			secureOption,
			otlptracegrpc.WithEndpoint(endpoint(cfg.Endpoint)),
		),
	)
	if err != nil {
		return noop, err
	}

	resources, err := resource.New(
		ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		return exporter.Shutdown, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resources),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
