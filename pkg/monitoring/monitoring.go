package monitoring

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

type Monitoring interface {
	Start(ctx context.Context)
	Stop(ctx context.Context)
}

type openTelemetry struct {
	serviceName    string
	environment    string
	endpoint       string
	tracerProvider *sdktrace.TracerProvider
}

func NewOpenTelemetry(serviceName, environment, endpoint string) Monitoring {
	return &openTelemetry{
		serviceName: serviceName,
		environment: environment,
		endpoint:    endpoint,
	}
}

func (m *openTelemetry) Start(ctx context.Context) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(m.endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		otel.Handle(err)
		return
	}

	m.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.serviceName),
			attribute.String("environment", m.environment),
		)),
	)

	otel.SetTracerProvider(m.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

func (m *openTelemetry) Stop(ctx context.Context) {
	if m.tracerProvider == nil {
		return
	}

	if err := m.tracerProvider.Shutdown(ctx); err != nil {
		otel.Handle(err)
	}
}
