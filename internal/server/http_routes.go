package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	rateLimitHandler := s.rateLimitMiddleware()
	protect := func(limit int64, h http.HandlerFunc) http.HandlerFunc {
		return rateLimitHandler(s.authMiddleware(s.requestSizeLimitMiddleware(limit)(h)))
	}
	api := func(h http.HandlerFunc) http.HandlerFunc { return protect(s.MaxRequestSize, h) }

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("POST /tailor", protect(s.uploadLimit(), s.handleTailor))

	mux.HandleFunc("POST /analysis/{id}/open", api(s.handleOpen))
	mux.HandleFunc("GET /analysis/{id}", api(s.handleGet))
	mux.HandleFunc("PUT /analysis/{id}/statement", api(s.handleStatement))
	mux.HandleFunc("PUT /analysis/{id}/skills", api(s.handleSkills))
	mux.HandleFunc("PUT /analysis/{id}/style", api(s.handleStyle))
	mux.HandleFunc("PUT /analysis/{id}/tab", api(s.handleTab))
	mux.HandleFunc("POST /analysis/{id}/regenerate", api(s.handleRegenerate))

	mux.HandleFunc("POST /analysis/{id}/experience", api(s.handleAddExperience))
	mux.HandleFunc("PATCH /analysis/{id}/experience/{index}", api(s.handleUpdateExperience))
	mux.HandleFunc("DELETE /analysis/{id}/experience/{index}", api(s.handleRemoveExperience))
	mux.HandleFunc("POST /analysis/{id}/experience/{index}/bullets", api(s.handleAddExperienceBullet))
	mux.HandleFunc("PUT /analysis/{id}/experience/{index}/bullets/{bullet}", api(s.handleUpdateExperienceBullet))
	mux.HandleFunc("DELETE /analysis/{id}/experience/{index}/bullets/{bullet}", api(s.handleRemoveExperienceBullet))

	mux.HandleFunc("POST /analysis/{id}/education", api(s.handleAddEducation))
	mux.HandleFunc("PATCH /analysis/{id}/education/{index}", api(s.handleUpdateEducation))
	mux.HandleFunc("DELETE /analysis/{id}/education/{index}", api(s.handleRemoveEducation))
	mux.HandleFunc("POST /analysis/{id}/education/{index}/bullets", api(s.handleAddEducationBullet))
	mux.HandleFunc("PUT /analysis/{id}/education/{index}/bullets/{bullet}", api(s.handleUpdateEducationBullet))
	mux.HandleFunc("DELETE /analysis/{id}/education/{index}/bullets/{bullet}", api(s.handleRemoveEducationBullet))

	return mux
}

// uploadLimit is the body limit for /tailor: the resume file plus form fields
func (s *Server) uploadLimit() int64 {
	if s.AppConfig == nil || s.AppConfig.App.MaxFileSize <= 0 {
		return s.MaxRequestSize
	}
	return s.AppConfig.App.MaxFileSize + s.MaxRequestSize
}

// requestAPIKey reads X-API-Key, falling back to an Authorization bearer token
func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if key, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return key
	}
	return ""
}

// authMiddleware rejects requests without a configured API key. With no
// keys configured every request passes.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKeyCount() == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		switch {
		case apiKey == "":
			s.Logger.Info("Rejected request without API key", "route", r.Pattern, "client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		case !s.validAPIKey(apiKey):
			s.Logger.Info("Rejected request with unknown API key",
				"route", r.Pattern, "client_ip", getClientIP(r), "api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// requestSizeLimitMiddleware caps the body at limit bytes; zero means no cap
func (s *Server) requestSizeLimitMiddleware(limit int64) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if limit <= 0 {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next(w, r)
		}
	}
}

// maskAPIKey keeps a short prefix of a key for log lines
func maskAPIKey(apiKey string) string {
	const shown = 4
	if len(apiKey) <= 2*shown {
		return "****"
	}
	return apiKey[:shown] + "****"
}
