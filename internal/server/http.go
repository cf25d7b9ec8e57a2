package server

import (
	"context"
	"io"
	"sync"
	"time"

	"resumetailor/internal/config"
	resumetailorErrors "resumetailor/internal/errors"
	"resumetailor/internal/observability"
	"resumetailor/internal/types"
	"resumetailor/internal/workspace"
)

// TextRequest is the body of the statement and skills endpoints
// StyleRequest is the body of the style endpoint
// TabRequest is the body of the tab endpoint
// ErrorResponse represents an error response
type TextRequest struct {
	Value string `json:"value"`
}

type StyleRequest struct {
	Style string `json:"style"`
}

type TabRequest struct {
	Tab string `json:"tab"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RegenerateResponse is returned after a successful regeneration
type RegenerateResponse struct {
	ID       string             `json:"id"`
	Path     string             `json:"path"`
	Document workspace.Document `json:"document"`
}

// Backend is everything the server needs from the tailoring backend
type Backend interface {
	GetResult(ctx context.Context, id string) (*types.ResultResponse, error)
	Regenerate(ctx context.Context, id string, req types.RegenerateRequest) (*types.RegenerateResponse, error)
	ParseResumeFile(ctx context.Context, fileName string, content io.Reader) (*types.ParseResumeResponse, error)
	AnalyzeJob(ctx context.Context, req types.AnalyzeJobRequest) (*types.AnalyzeJobResponse, error)
	Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error)
	OutputFiles(paths []string, id string) []types.OutputFile
	IsHealthy() bool
	Stats() map[string]any
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication, replaced when the key watcher sees a rotation
	keysMu  sync.RWMutex
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Backend  Backend
	Drafts   workspace.DraftStore
	Sessions *Sessions

	Observability *observability.ObservabilityManager
	KeyWatcher    *KeyWatcher

	// Logger
	Logger *resumetailorErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// Dependencies are the collaborators a Server is wired to
type Dependencies struct {
	Backend       Backend
	Drafts        workspace.DraftStore
	Observability *observability.ObservabilityManager
	Vault         VaultClientInterface
}

// ServerConfigFrom maps the application config onto a ServerConfig
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *resumetailorErrors.Logger) *Server {
	if logger == nil {
		logger = resumetailorErrors.Discard()
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	om := deps.Observability
	if om == nil {
		om, _ = observability.NewObservabilityManager(observability.ObservabilityConfig{ServiceName: "resumetailor"}, logger)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Backend:        deps.Backend,
		Drafts:         deps.Drafts,
		Sessions:       NewSessions(),
		Observability:  om,
		Logger:         logger,
	}
	s.SetAPIKeys(cfg.APIKeys)

	if deps.Vault != nil && appCfg != nil && appCfg.Vault.Secrets.ServerKeys != "" && appCfg.Vault.PollInterval > 0 {
		s.KeyWatcher = NewKeyWatcher(deps.Vault, appCfg.Vault.Secrets.ServerKeys, appCfg.Vault.PollInterval,
			func(keys []string, err error) {
				if err == nil {
					s.SetAPIKeys(keys)
				}
			}, logger)
	}
	return s
}

// SetAPIKeys replaces the accepted API keys; empty entries are ignored
func (s *Server) SetAPIKeys(keys []string) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range keys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	s.APIKeys = apiKeyMap
}

func (s *Server) apiKeyCount() int {
	s.keysMu.RLock()
	defer s.keysMu.RUnlock()
	return len(s.APIKeys)
}

func (s *Server) validAPIKey(key string) bool {
	s.keysMu.RLock()
	defer s.keysMu.RUnlock()
	return s.APIKeys[key]
}
