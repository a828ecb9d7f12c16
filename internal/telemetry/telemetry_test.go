package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), Config{})
	require.NoError(t, err)

	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_ExportsMetricsOnShutdown(t *testing.T) {
	t.Cleanup(func() { otel.SetMeterProvider(noop.NewMeterProvider()) })

	var buf bytes.Buffer
	p, err := New(context.Background(), Config{
		Enabled:     true,
		ServiceName: "mashbot-test",
		Interval:    time.Hour,
		Writer:      &buf,
	})
	require.NoError(t, err)
	require.NotNil(t, p.LoggerProvider())

	counter, err := otel.Meter("mashbot/test").Int64Counter("test.frames")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "test.frames")
	assert.Contains(t, buf.String(), "mashbot-test")
}
