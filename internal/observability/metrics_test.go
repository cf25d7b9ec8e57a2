package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumetailor/internal/drafts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestMetricsRecorders(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRegeneration(ctx, "success", 20*time.Millisecond)
	m.RecordRegeneration(ctx, "stale", time.Millisecond)
	m.DraftFailure(ctx, "save", drafts.SectionExperience)
	m.RecordBackendRequest(ctx, "regenerate", http.StatusOK, time.Millisecond, nil)
	m.RecordHTTPRequest(ctx, http.MethodGet, "GET /health", http.StatusOK, time.Millisecond)
	m.RecordRateLimitHit(ctx, "ip")
	m.RecordTailoringRun(ctx, false)

	sums := collect(t, reader)
	assert.Equal(t, int64(2), sums["resumetailor_regenerations_total"])
	assert.Equal(t, int64(1), sums["resumetailor_draft_failures_total"])
	assert.Equal(t, int64(1), sums["resumetailor_backend_requests_total"])
	assert.Equal(t, int64(1), sums["resumetailor_http_requests_total"])
	assert.Equal(t, int64(1), sums["resumetailor_rate_limit_hits_total"])
	assert.Equal(t, int64(1), sums["resumetailor_tailoring_runs_total"])
}

func TestDisabledManager(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{ServiceName: "resumetailor"}, nil)
	require.NoError(t, err)

	assert.NotNil(t, om.GetMetrics())
	om.GetMetrics().RecordRegeneration(context.Background(), "success", time.Second)
	assert.NotNil(t, om.Tracer("test"))
	assert.NoError(t, om.Shutdown(context.Background()))

	handler := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestObservabilityMiddlewareUsesRoutePattern(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{ServiceName: "resumetailor"}, nil)
	require.NoError(t, err)

	mux := http.NewServeMux()
	var pattern string
	mux.HandleFunc("GET /results/{id}", func(w http.ResponseWriter, r *http.Request) {
		pattern = r.Pattern
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	ObservabilityMiddleware(om)(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/abc", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET /results/{id}", pattern)
}

func TestPrometheusExporterServesRecordedMetrics(t *testing.T) {
	reader, handler, err := SetupPrometheusExporter(PrometheusConfig{Enabled: true, Endpoint: "/metrics", Port: "0"})
	require.NoError(t, err)
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	m.RecordTailoringRun(context.Background(), true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resumetailor_tailoring_runs")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPrometheusExporterDisabled(t *testing.T) {
	reader, handler, err := SetupPrometheusExporter(PrometheusConfig{})
	require.NoError(t, err)
	assert.Nil(t, reader)
	assert.Nil(t, handler)
}
