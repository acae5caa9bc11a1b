// Package tracing sets up the process-wide OpenTelemetry tracer
// provider and the span helpers for a crack run. Crack opens one root
// span per run; StartNodeExpansion and StartDecoderInvocation build
// child spans, but the search engine does not call them, so a run's
// trace holds only its root span.
package tracing

import (
	"context"
	"fmt"

	"github.com/kenneth/autocrack/internal/config"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kenneth/autocrack"

// Provider wraps an sdktrace.TracerProvider with the tracer the rest of
// the process pulls spans from.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

// noopProvider is returned when tracing is disabled; Tracer() still
// returns a usable no-op tracer so call sites never need a nil check.
func noopProvider() *Provider {
	return &Provider{tracer: otel.Tracer(instrumentationName)}
}

// NewProvider builds a tracer provider from cfg. An empty or disabled
// config returns a no-op provider so callers can unconditionally defer
// Shutdown and call Tracer().
func NewProvider(ctx context.Context, cfg config.TracingConfig, serviceVersion string, logger *logrus.Logger) (*Provider, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if !cfg.Enabled || cfg.Exporter == "" {
		return noopProvider(), nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing: build exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", "autocrack"),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.WithField("exporter", cfg.Exporter).Info("tracing: provider initialized")
	return &Provider{tp: tp, tracer: tp.Tracer(instrumentationName)}, nil
}

func newExporter(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
		}
		return otlptracegrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("tracing: unknown exporter %q", cfg.Exporter)
	}
}

// Tracer returns the tracer spans should be started from.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Shutdown flushes pending spans and releases exporter resources. Safe
// to call on a no-op provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// StartRun opens the root span for a single crack run.
func (p *Provider) StartRun(ctx context.Context, runID, input string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "crack.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("input_length", len(input)),
	))
}

// StartNodeExpansion opens a child span for a single search-node pop
// and fan-out across the decoder registry.
func (p *Provider) StartNodeExpansion(ctx context.Context, depth int) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "search.expand_node", trace.WithAttributes(
		attribute.Int("depth", depth),
	))
}

// StartDecoderInvocation opens a child span for a single decoder
// invocation within a node expansion.
func (p *Provider) StartDecoderInvocation(ctx context.Context, decoderName string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "decoder.crack", trace.WithAttributes(
		attribute.String("decoder", decoderName),
	))
}
