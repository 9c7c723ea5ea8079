package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, Config{Enabled: false, ServiceName: "constructora"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_EnabledWithoutCollector(t *testing.T) {
	// The gRPC exporter connects lazily, so construction succeeds offline
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     0.5,
		ServiceName:       "constructora",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())
	_ = tp.Shutdown(ctx)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewResource_DefaultVersion(t *testing.T) {
	res, err := newResource(Config{ServiceName: "constructora"})
	require.NoError(t, err)
	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.version" {
			found = true
			assert.Equal(t, "dev", kv.Value.AsString())
		}
	}
	assert.True(t, found)
}
