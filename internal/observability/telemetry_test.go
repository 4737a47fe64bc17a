package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/annel0/resinfarm/internal/config"
)

func TestInitTelemetryDisabled(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), config.TelemetryConfig{}, "server")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProviderExportsSpans(t *testing.T) {
	ctx := context.Background()
	exp := tracetest.NewInMemoryExporter()

	tp, err := NewTracerProvider(ctx, exp, "resinfarm-test", "client")
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "interaction.Stop")
	span.End()
	require.NoError(t, tp.ForceFlush(ctx))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "interaction.Stop", spans[0].Name)

	found := false
	for _, kv := range spans[0].Resource.Attributes() {
		if string(kv.Key) == "resinfarm.role" {
			found = true
			assert.Equal(t, "client", kv.Value.AsString())
		}
	}
	assert.True(t, found)
	require.NoError(t, tp.Shutdown(ctx))
}
