package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgpulse/internal/config"
	"vgpulse/internal/shared/testutil"
	"vgpulse/pkg/contracts/domain"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	path := testutil.WriteSalesCSV(t, nil, testutil.SampleSalesRows(), false)
	cfg.Pipeline.DatasetFile = path
	cfg.Paths.DataDir = filepath.Dir(path)
	cfg.Paths.ExportDir = filepath.Join(t.TempDir(), "exports")
	cfg.Server.Port = 0
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	return app, logs
}

func serve(app *Application, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNew(t *testing.T) {
	app, _ := newTestApp(t, newTestConfig(t))

	require.NotNil(t, app.Router)
	require.NotNil(t, app.Server)
	require.NotNil(t, app.Cache)
	require.NotNil(t, app.Services.Dashboard)
	require.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.OTelProviders.PrometheusHTTP)
	assert.DirExists(t, app.Config.Paths.ExportDir)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)

	cfg := newTestConfig(t)
	cfg.Pipeline.Manufacturers = []domain.ManufacturerGroup{
		{Name: "Sony", Platforms: []string{"PS"}},
		{Name: "Sega", Platforms: []string{"PS"}},
	}
	logger, _ := testutil.NewTestLogger(t)
	_, err = New(cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard service")
}

func TestApplication_Routes(t *testing.T) {
	app, _ := newTestApp(t, newTestConfig(t))

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK},
		{"version", http.MethodGet, "/api/version", http.StatusOK},
		{"market share", http.MethodGet, "/api/market-share", http.StatusOK},
		{"distribution", http.MethodGet, "/api/distribution?dimension=Genre", http.StatusOK},
		{"categories", http.MethodGet, "/api/categories", http.StatusOK},
		{"forecast", http.MethodGet, "/api/forecast", http.StatusOK},
		{"dashboard", http.MethodGet, "/api/dashboard", http.StatusOK},
		{"summary", http.MethodGet, "/api/dataset/summary", http.StatusOK},
		{"reload", http.MethodPost, "/api/dataset/reload", http.StatusOK},
		{"export", http.MethodGet, "/api/export?format=csv&table=forecast", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/unknown", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/market-share", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt.method, tt.target)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplication_MarketShareEnvelope(t *testing.T) {
	app, _ := newTestApp(t, newTestConfig(t))

	rec := serve(app, http.MethodGet, "/api/market-share")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 9, body["count"])
}

func TestApplication_MetricsRecordPipeline(t *testing.T) {
	app, _ := newTestApp(t, newTestConfig(t))

	require.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/api/forecast").Code)

	rec := serve(app, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dataset_loads_total")
	assert.Contains(t, rec.Body.String(), "pipeline_stage_executions_total")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestApplication_MissingDataset(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Pipeline.DatasetFile = filepath.Join(t.TempDir(), "missing.csv")
	app, _ := newTestApp(t, cfg)

	assert.Equal(t, http.StatusServiceUnavailable, serve(app, http.MethodGet, "/api/health/ready").Code)

	rec := serve(app, http.MethodGet, "/api/market-share")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.0001, Burst: 1}
	app, _ := newTestApp(t, cfg)

	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/api/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(app, http.MethodGet, "/api/health").Code)
}

func TestApplication_getCORSConfig(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Server.Port = 8080
	cfg.Security.AllowedOrigins = []string{"http://localhost:8080", "https://dashboard.example.com"}
	app, _ := newTestApp(t, cfg)

	cors := app.getCORSConfig()
	assert.Equal(t, []string{
		"http://localhost:8080",
		"http://127.0.0.1:8080",
		"https://dashboard.example.com",
	}, cors.AllowedOrigins)
	assert.Contains(t, cors.ExposedHeaders, "Content-Disposition")

	cfg.Security.EnableCORS = false
	assert.Len(t, app.getCORSConfig().AllowedOrigins, 2)
}

func TestApplication_StartStop(t *testing.T) {
	app, logs := newTestApp(t, newTestConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Dataset warmed")
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Startup health check passed")
	assert.EqualValues(t, 1, app.Cache.Stats().Loads)

	require.NoError(t, app.Stop(context.Background()))
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Application shutdown complete")
	assert.Equal(t, 0, app.Cache.Stats().Entries)
}

func TestApplication_StartWarnsWithoutDataset(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Pipeline.DatasetFile = filepath.Join(t.TempDir(), "missing.csv")
	app, logs := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Startup health check warnings")
	require.NoError(t, app.Stop(context.Background()))
}

func TestApplication_StartSuggestsDatasets(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Pipeline.DatasetFile = filepath.Join(cfg.Paths.DataDir, "vgsales.csv")
	app, logs := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Configured dataset not usable, other datasets found")
	require.NoError(t, app.Stop(context.Background()))
}
