// Package client talks to the tailoring backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"
	"resumetailor/internal/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 10 << 20

// StatusError is returned for any non-2xx backend response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Recorder receives one observation per backend call
type Recorder interface {
	RecordBackendRequest(ctx context.Context, op string, status int, duration time.Duration, err error)
}

// Client calls the backend's /tailor endpoints. Calls are never retried
// automatically; failures surface to the caller who decides whether to retry.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *Breaker
	limiter    *rate.Limiter
	logger     *errors.Logger
	tracer     trace.Tracer
	recorder   Recorder
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithTracer overrides the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// New builds a client from the api config section
func New(cfg config.APIConfig, logger *errors.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = errors.Discard()
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: NewBreaker("backend", cfg.CircuitBreaker, logger),
		logger:  logger,
		tracer:  otel.Tracer("resumetailor.client"),
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerSecond > 0 {
		burst := cfg.RateLimit.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetResult fetches the canonical result for id, bypassing any cache
func (c *Client) GetResult(ctx context.Context, id string) (*types.ResultResponse, error) {
	var out types.ResultResponse
	err := c.do(ctx, call{
		op:      "get_result",
		method:  http.MethodGet,
		path:    "/tailor/result/" + url.PathEscape(id),
		code:    errors.ErrCodeFetchResultFailed,
		message: "Failed to fetch updated resume",
		noStore: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Regenerate submits an edited result and returns the id of the new one
func (c *Client) Regenerate(ctx context.Context, id string, req types.RegenerateRequest) (*types.RegenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode regenerate payload", err)
	}
	var out types.RegenerateResponse
	err = c.do(ctx, call{
		op:          "regenerate",
		method:      http.MethodPost,
		path:        "/tailor/regenerate/" + url.PathEscape(id),
		body:        body,
		contentType: "application/json",
		code:        errors.ErrCodeRegenerateFailed,
		message:     "Failed to regenerate resume",
	}, &out)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.NewNetworkError(errors.ErrCodeRegenerateFailed, "Failed to regenerate resume", fmt.Errorf("response carried no id"))
	}
	return &out, nil
}

// ParseResumeFile uploads a resume as multipart field "file"
func (c *Client) ParseResumeFile(ctx context.Context, fileName string, content io.Reader) (*types.ParseResumeResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read resume", err)
	}
	if err := writer.Close(); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload", err)
	}

	var out types.ParseResumeResponse
	err = c.do(ctx, call{
		op:          "parse_resume",
		method:      http.MethodPost,
		path:        "/tailor/parse-resume-file",
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
		code:        errors.ErrCodeNetworkFailed,
		message:     "Failed to parse resume",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeJob sends the job description for keyword and signal extraction
func (c *Client) AnalyzeJob(ctx context.Context, req types.AnalyzeJobRequest) (*types.AnalyzeJobResponse, error) {
	var out types.AnalyzeJobResponse
	if err := c.postJSON(ctx, "analyze_job", "/tailor/analyze-job", "Failed to analyze job", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate asks the backend to produce a tailored resume
func (c *Client) Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	var out types.GenerateResponse
	if err := c.postJSON(ctx, "generate", "/tailor/generate", "Failed to generate resume", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats reports breaker state for the /stats endpoint
func (c *Client) Stats() map[string]any {
	return map[string]any{
		"base_url":        c.baseURL,
		"circuit_breaker": c.breaker.Stats(),
		"rate_limited":    c.limiter != nil,
	}
}

// IsHealthy is false while the breaker is open
func (c *Client) IsHealthy() bool {
	return c.breaker.IsHealthy()
}

func (c *Client) postJSON(ctx context.Context, op, path, message string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode request", err)
	}
	return c.do(ctx, call{
		op:          op,
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: "application/json",
		code:        errors.ErrCodeNetworkFailed,
		message:     message,
	}, out)
}

type call struct {
	op          string
	method      string
	path        string
	body        []byte
	contentType string
	code        string
	message     string
	noStore     bool
}

func (c *Client) do(ctx context.Context, rc call, out any) error {
	ctx, span := c.tracer.Start(ctx, "backend."+rc.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", rc.method),
			attribute.String("backend.path", rc.path),
		))
	defer span.End()

	start := time.Now()
	status := 0
	err := c.roundTrip(ctx, rc, out, &status)

	if c.recorder != nil {
		c.recorder.RecordBackendRequest(ctx, rc.op, status, time.Since(start), err)
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.LogError(err, "Backend call failed", "op", rc.op, "status", status)
		return err
	}
	c.logger.Debug("Backend call completed", "op", rc.op, "status", status, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *Client) roundTrip(ctx context.Context, rc call, out any, status *int) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.NewNetworkError(errors.ErrCodeRateLimited, "backend rate limit wait aborted", err).
				WithContext("op", rc.op)
		}
	}

	payload, err := c.breaker.Execute(func() ([]byte, error) {
		var body io.Reader
		if rc.body != nil {
			body = bytes.NewReader(rc.body)
		}
		req, err := http.NewRequestWithContext(ctx, rc.method, c.baseURL+rc.path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if rc.contentType != "" {
			req.Header.Set("Content-Type", rc.contentType)
		}
		if rc.noStore {
			req.Header.Set("Cache-Control", "no-store")
		}
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		*status = resp.StatusCode

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 512)}
		}
		return data, nil
	})
	if err != nil {
		if isBreakerRejection(err) {
			return errors.NewNetworkError(errors.ErrCodeCircuitOpen, rc.message, err).WithContext("op", rc.op)
		}
		appErr := errors.NewNetworkError(rc.code, rc.message, err).WithContext("op", rc.op)
		var statusErr *StatusError
		if stderrors.As(err, &statusErr) {
			appErr.WithContext("status", statusErr.StatusCode)
		}
		if ctx.Err() != nil {
			appErr.WithContext("timeout", stderrors.Is(ctx.Err(), context.DeadlineExceeded))
		}
		return appErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.NewNetworkError(rc.code, rc.message,
			errors.NewValidationError(errors.ErrCodeDecodeFailed, "malformed backend response", err)).
			WithContext("op", rc.op)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
