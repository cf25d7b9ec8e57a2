package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"
	"resumetailor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, mutate ...func(*config.APIConfig)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.APIConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg, nil, WithHTTPClient(srv.Client()))
}

func TestBuildOutputFiles(t *testing.T) {
	files := BuildOutputFiles("http://localhost:8000/", []string{"tailored/abc123/My Resume-tailored.pdf", "plain.docx"}, "abc123")

	require.Len(t, files, 2)
	assert.Equal(t, "My Resume-tailored.pdf", files[0].Name)
	assert.Equal(t, "http://localhost:8000/tailor/download/abc123/My%20Resume-tailored.pdf", files[0].DownloadURL)
	assert.Equal(t, "http://localhost:8000/tailor/preview/abc123/My%20Resume-tailored.pdf", files[0].PreviewURL)
	assert.Equal(t, "plain.docx", files[1].Name)

	assert.Empty(t, BuildOutputFiles("http://x", nil, "abc"))
}

func TestGetResult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tailor/result/abc", r.URL.Path)
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		_, _ = io.WriteString(w, `{"id":"abc","match_score":81,"summary":"fit","outputs":["a/b.pdf"],"skills":["Go"]}`)
	}), func(cfg *config.APIConfig) { cfg.APIKey = "secret" })

	got, err := client.GetResult(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, 81.0, got.MatchScore)
	assert.Equal(t, []string{"a/b.pdf"}, got.Outputs)
}

func TestRegenerateSendsPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tailor/regenerate/abc", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Nil(t, body["statement"])
		assert.Equal(t, []any{"Go"}, body["skills"])
		assert.Equal(t, "Fancy", body["style"])

		_, _ = io.WriteString(w, `{"id":"xyz"}`)
	}))

	got, err := client.Regenerate(context.Background(), "abc", types.RegenerateRequest{
		Skills: []string{"Go"},
		Style:  types.StyleFancy,
	})
	require.NoError(t, err)
	assert.Equal(t, "xyz", got.ID)
}

func TestRegenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"not found", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, `{oops`) }},
		{"missing id", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, `{}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Regenerate(context.Background(), "abc", types.RegenerateRequest{})

			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
			assert.Equal(t, errors.ErrCodeRegenerateFailed, errors.CodeOf(err))
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := New(config.APIConfig{BaseURL: base, Timeout: time.Second}, nil)
	_, err := client.GetResult(context.Background(), "abc")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFetchResultFailed, errors.CodeOf(err))
}

func TestNoAutomaticRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.GetResult(context.Background(), "abc")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), func(cfg *config.APIConfig) {
		cfg.CircuitBreaker = config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		}
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.GetResult(ctx, "abc")
		require.Error(t, err)
	}
	assert.False(t, client.IsHealthy())

	_, err := client.GetResult(ctx, "abc")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCircuitOpen, errors.CodeOf(err))
	assert.Equal(t, int32(2), calls.Load(), "open breaker short-circuits the call")

	stats := client.Stats()["circuit_breaker"].(map[string]any)
	assert.Equal(t, "open", stats["state"])
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), func(cfg *config.APIConfig) {
		cfg.CircuitBreaker = config.CircuitBreakerConfig{Enabled: true, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 1, FailureThreshold: 0.1}
	})

	for i := 0; i < 3; i++ {
		_, _ = client.GetResult(context.Background(), "missing")
	}
	assert.True(t, client.IsHealthy())
}

func TestParseResumeFileMultipart(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tailor/parse-resume-file", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "resume.txt", header.Filename)
		assert.Equal(t, "Jane Doe", string(data))
		_, _ = io.WriteString(w, `{"id":"profile-1","file_name":"resume.txt","parsed_data":{"name":"Jane Doe","skills":["Go"]}}`)
	}))

	got, err := client.ParseResumeFile(context.Background(), "resume.txt", strings.NewReader("Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, "profile-1", got.ID)
	require.NotNil(t, got.ParsedData.Name)
	assert.Equal(t, "Jane Doe", *got.ParsedData.Name)
}

func TestAnalyzeAndGenerate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tailor/analyze-job":
			var req types.AnalyzeJobRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Mid", req.ExperienceLevel)
			_, _ = io.WriteString(w, `{"id":"job-1","keywords":["go"],"signals":{"levels":["mid"],"tools":[],"focus":[]},"summary":"ok"}`)
		case "/tailor/generate":
			var req types.GenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "job-1", req.JobAnalysisID)
			_, _ = io.WriteString(w, `{"id":"res-1","output_files":["tailored/res-1/out.pdf"]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ctx := context.Background()
	analysis, err := client.AnalyzeJob(ctx, types.AnalyzeJobRequest{JobText: "x", ExperienceLevel: "Mid"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mid"}, analysis.Signals.Levels)

	generated, err := client.Generate(ctx, types.GenerateRequest{JobAnalysisID: analysis.ID, ResumeProfileID: "p"})
	require.NoError(t, err)
	assert.Equal(t, "res-1", generated.ID)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"abc"}`)
	}), func(cfg *config.APIConfig) {
		cfg.RateLimit = config.ClientRateConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}
	})

	_, err := client.GetResult(context.Background(), "abc")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GetResult(ctx, "abc")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRateLimited, errors.CodeOf(err))
}
