package observability

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// SetupPrometheusExporter creates an otel metric reader backed by a private
// registry, which also carries the Go runtime and process collectors, and
// the handler that serves that registry.
func SetupPrometheusExporter(cfg PrometheusConfig) (metric.Reader, http.Handler, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	registry := promclient.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, nil, fmt.Errorf("register go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, nil, fmt.Errorf("register process collector: %w", err)
	}

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		Registry:          registry,
		EnableOpenMetrics: true,
	})
	return exporter, handler, nil
}

// StartPrometheusServer binds the scrape port and serves handler in the
// background. The bind happens before returning so a taken port is
// reported to the caller instead of only being logged.
func StartPrometheusServer(handler http.Handler, cfg PrometheusConfig, logger *errors.Logger) (*http.Server, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("listen for prometheus on :%s: %w", cfg.Port, err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+cfg.Endpoint, handler)
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	logger.Info("Serving Prometheus metrics", "addr", ln.Addr().String(), "endpoint", cfg.Endpoint)
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.LogError(err, "Prometheus server stopped")
		}
	}()
	return server, nil
}

// GetPrometheusConfig reads the scrape settings from cfg
func GetPrometheusConfig(cfg *config.Config) PrometheusConfig {
	if cfg == nil {
		return PrometheusConfig{Endpoint: "/metrics", Port: "9090"}
	}
	return PrometheusConfig{
		Enabled:  cfg.Observability.Prometheus.Enabled,
		Endpoint: cfg.Observability.Prometheus.Endpoint,
		Port:     cfg.Observability.Prometheus.Port,
	}
}
