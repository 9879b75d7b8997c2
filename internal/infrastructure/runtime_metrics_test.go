package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/config"
)

func TestRuntimeMetrics_Collect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.prom")
	providers, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "none", MetricsFile: path}, nil, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())
	require.NotNil(t, providers.Runtime)

	stats := providers.Runtime.Collect(context.Background(), time.Now().Add(-2*time.Second))
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.SystemMemory)
	assert.GreaterOrEqual(t, stats.RunDuration, 2*time.Second)
	assert.Len(t, stats.LogAttrs(), 10)

	require.NoError(t, providers.WriteMetrics())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "passenger_runtime_goroutines")
	assert.Contains(t, string(data), "passenger_run_duration_seconds")
}
