package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Backend API
	v.SetDefault("api.baseURL", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.apiKey", "")

	v.SetDefault("api.circuitBreaker.enabled", true)
	v.SetDefault("api.circuitBreaker.maxRequests", 3)
	v.SetDefault("api.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("api.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("api.circuitBreaker.minRequests", 3)
	v.SetDefault("api.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("api.rateLimit.enabled", false)
	v.SetDefault("api.rateLimit.requestsPerSecond", 5.0)
	v.SetDefault("api.rateLimit.burst", 5)

	// Drafts
	v.SetDefault("drafts.backend", "file")
	v.SetDefault("drafts.namespace", "resumetailor")
	v.SetDefault("drafts.path", "")
	v.SetDefault("drafts.redis.addr", "localhost:6379")
	v.SetDefault("drafts.redis.password", "")
	v.SetDefault("drafts.redis.db", 0)
	v.SetDefault("drafts.redis.dialTimeout", 5*time.Second)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second) // regenerate waits on two backend calls
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 1024*1024)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024) // 10MB, resumes may be PDFs

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.pollInterval", 5*time.Minute)
	v.SetDefault("vault.secrets.apiKey", "")
	v.SetDefault("vault.secrets.serverKeys", "")
	v.SetDefault("vault.secrets.redisPassword", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "resumetailor")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
