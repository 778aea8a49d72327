package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgpulse/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	cfg := NewOTelConfig(config.Default().Observability)

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	// Tracing is off by default but a tracer is always available
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*OTelConfig)
		wantErr string
		check   func(*testing.T, *OTelProviders)
	}{
		{
			name: "everything disabled",
			mutate: func(c *OTelConfig) {
				c.EnableMetrics = false
				c.EnableTracing = false
			},
			check: func(t *testing.T, p *OTelProviders) {
				assert.Nil(t, p.MeterProvider)
				assert.Nil(t, p.PrometheusHTTP)
				assert.NotNil(t, p.Meter, "noop meter expected")
			},
		},
		{
			name: "stdout tracing",
			mutate: func(c *OTelConfig) {
				c.EnableTracing = true
				c.TraceExporter = "stdout"
			},
			check: func(t *testing.T, p *OTelProviders) {
				assert.NotNil(t, p.TracerProvider)
			},
		},
		{
			name:    "unknown metric exporter",
			mutate:  func(c *OTelConfig) { c.MetricExporter = "statsd" },
			wantErr: "unsupported metric exporter",
		},
		{
			name: "unknown trace exporter",
			mutate: func(c *OTelConfig) {
				c.EnableTracing = true
				c.TraceExporter = "jaeger"
			},
			wantErr: "unsupported trace exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewOTelConfig(config.Default().Observability)
			tt.mutate(cfg)

			providers, err := InitializeOTel(cfg, testLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer providers.Shutdown(context.Background())
			tt.check(t, providers)
		})
	}
}

func TestBusinessMetrics(t *testing.T) {
	providers, err := InitializeOTel(NewOTelConfig(config.Default().Observability), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordDatasetLoad(ctx, "csv", 3, 20*time.Millisecond, nil)
	metrics.RecordStage(ctx, "market_share", time.Millisecond, nil)
	metrics.RecordStage(ctx, "forecast", time.Millisecond, errors.New("boom"))
	metrics.DatasetCacheHits.Add(ctx, 1)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "dataset_loads_total")
	assert.Contains(t, string(body), "dataset_rows_skipped_total")
	assert.Contains(t, string(body), "pipeline_stage_executions_total")
	assert.Contains(t, string(body), "dataset_cache_hits_total")
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		m.RecordStage(context.Background(), "x", time.Second, nil)
		m.RecordDatasetLoad(context.Background(), "csv", 1, time.Second, nil)
		m.RecordCacheLookup(context.Background(), true)
		m.RecordForecastSkip(context.Background(), "Sony")
	})

	metrics, err := CreateBusinessMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, metrics.HTTPRequestsTotal)
}

func TestStartSpan_RecordError(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "unit")
	defer span.End()
	assert.NotPanics(t, func() { RecordError(ctx, errors.New("failed")) })
}
