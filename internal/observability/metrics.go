package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resumetailor/internal/drafts"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the application instruments. It satisfies the recorder
// interfaces of the client, workspace and drafts packages.
type Metrics struct {
	Regenerations        metric.Int64Counter
	RegenerationDuration metric.Float64Histogram
	DraftFailures        metric.Int64Counter
	BackendRequests      metric.Int64Counter
	BackendDuration      metric.Float64Histogram
	HTTPRequests         metric.Int64Counter
	HTTPDuration         metric.Float64Histogram
	RateLimitHits        metric.Int64Counter
	TailoringRuns        metric.Int64Counter
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.Regenerations, err = meter.Int64Counter(
		"resumetailor_regenerations_total",
		metric.WithDescription("Regeneration attempts by outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create regenerations metric: %w", err)
	}

	if m.RegenerationDuration, err = meter.Float64Histogram(
		"resumetailor_regeneration_duration_seconds",
		metric.WithDescription("Submit plus canonical fetch latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create regeneration duration metric: %w", err)
	}

	if m.DraftFailures, err = meter.Int64Counter(
		"resumetailor_draft_failures_total",
		metric.WithDescription("Draft reads and writes that degraded to no draft"),
	); err != nil {
		return nil, fmt.Errorf("failed to create draft failures metric: %w", err)
	}

	if m.BackendRequests, err = meter.Int64Counter(
		"resumetailor_backend_requests_total",
		metric.WithDescription("Calls to the tailoring backend"),
	); err != nil {
		return nil, fmt.Errorf("failed to create backend requests metric: %w", err)
	}

	if m.BackendDuration, err = meter.Float64Histogram(
		"resumetailor_backend_request_duration_seconds",
		metric.WithDescription("Tailoring backend call latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create backend duration metric: %w", err)
	}

	if m.HTTPRequests, err = meter.Int64Counter(
		"resumetailor_http_requests_total",
		metric.WithDescription("Requests served by the workspace API"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http requests metric: %w", err)
	}

	if m.HTTPDuration, err = meter.Float64Histogram(
		"resumetailor_http_request_duration_seconds",
		metric.WithDescription("Workspace API latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http duration metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"resumetailor_rate_limit_hits_total",
		metric.WithDescription("Requests rejected by the rate limiter"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	if m.TailoringRuns, err = meter.Int64Counter(
		"resumetailor_tailoring_runs_total",
		metric.WithDescription("Upload, analyze and generate runs by outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create tailoring runs metric: %w", err)
	}

	return m, nil
}

// NoopMetrics returns instruments that record nothing
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(metricnoop.NewMeterProvider().Meter("noop"))
	return m
}

// RecordRegeneration counts one regeneration outcome
func (m *Metrics) RecordRegeneration(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.Regenerations.Add(ctx, 1, attrs)
	m.RegenerationDuration.Record(ctx, duration.Seconds(), attrs)
}

// DraftFailure counts a degraded draft operation
func (m *Metrics) DraftFailure(ctx context.Context, op string, section drafts.Section) {
	m.DraftFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("section", string(section)),
	))
}

// RecordBackendRequest counts one backend call
func (m *Metrics) RecordBackendRequest(ctx context.Context, op string, status int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", statusLabel(status)),
		attribute.Bool("success", err == nil),
	)
	m.BackendRequests.Add(ctx, 1, attrs)
	m.BackendDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordHTTPRequest counts one served request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", statusLabel(status)),
	)
	m.HTTPRequests.Add(ctx, 1, attrs)
	m.HTTPDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, keyType string) {
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
}

// RecordTailoringRun counts one pipeline run
func (m *Metrics) RecordTailoringRun(ctx context.Context, success bool) {
	m.TailoringRuns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
