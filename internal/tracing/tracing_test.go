package tracing

import (
	"context"
	"testing"

	"github.com/kenneth/autocrack/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDisabledIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), config.TracingConfig{}, "test", nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NotNil(t, p.Tracer())

	ctx, span := p.StartRun(context.Background(), "run-1", "input")
	assert.NotNil(t, ctx)
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderStdoutExporter(t *testing.T) {
	p, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true, Exporter: "stdout"}, "test", nil)
	require.NoError(t, err)
	require.NotNil(t, p)

	ctx, span := p.StartRun(context.Background(), "run-1", "olleh")
	_, nodeSpan := p.StartNodeExpansion(ctx, 0)
	_, decoderSpan := p.StartDecoderInvocation(ctx, "base64")
	decoderSpan.End()
	nodeSpan.End()
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderUnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true, Exporter: "carrier-pigeon"}, "test", nil)
	assert.Error(t, err)
}
