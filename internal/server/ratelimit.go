package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"resumetailor/internal/errors"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter *rate.Limiter
	seen    time.Time
}

// RateLimiter hands out one token bucket per client key and evicts the
// ones that have been idle for limiterIdleTTL.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	logger   *errors.Logger
}

// RateLimiterStats is the /stats view of the limiter
type RateLimiterStats struct {
	Enabled        bool    `json:"enabled"`
	ActiveLimiters int     `json:"active_limiters"`
	RatePerSecond  float64 `json:"rate_per_second"`
	RatePerMinute  float64 `json:"rate_per_minute"`
	BurstCapacity  int     `json:"burst_capacity"`
}

// NewRateLimiter allows requestsPerMin per client with the given burst
func NewRateLimiter(requestsPerMin, burst int, logger *errors.Logger) *RateLimiter {
	if logger == nil {
		logger = errors.Discard()
	}
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burst,
		now:     time.Now,
		stop:    make(chan struct{}),
		logger:  logger,
	}
	go rl.evictLoop(limiterIdleTTL)
	return rl
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.seen = rl.now()
	return c.limiter
}

// Allow takes one token for key. When none is left it also returns how
// long the client should wait before the next token.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	lim := rl.limiterFor(key)
	if lim.Allow() {
		return true, 0
	}
	if rl.limit <= 0 {
		return false, limiterIdleTTL
	}
	wait := time.Duration((1 - lim.Tokens()) / float64(rl.limit) * float64(time.Second))
	return false, wait
}

// Stats reports the limiter configuration and the number of tracked clients
func (rl *RateLimiter) Stats() RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return RateLimiterStats{
		Enabled:        true,
		ActiveLimiters: len(rl.clients),
		RatePerSecond:  float64(rl.limit),
		RatePerMinute:  float64(rl.limit) * 60,
		BurstCapacity:  rl.burst,
	}
}

func (rl *RateLimiter) evictLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictIdle(every)
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle(ttl time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-ttl)
	evicted := 0
	for key, c := range rl.clients {
		if c.seen.Before(cutoff) {
			delete(rl.clients, key)
			evicted++
		}
	}
	rl.logger.Debug("Rate limiter eviction", "evicted", evicted, "remaining", len(rl.clients))
	return evicted
}

// Close stops the eviction goroutine. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// rateLimitMiddleware rejects requests over the per-client budget with 429
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil || s.RateLimit == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			ok, wait := s.RateLimiter.Allow(key)
			if !ok {
				s.Logger.Info("Rate limit exceeded",
					"key_type", keyType(key),
					"route", r.Pattern,
					"client_ip", getClientIP(r))
				s.Observability.GetMetrics().RecordRateLimitHit(r.Context(), keyType(key))
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}
			next(w, r)
		}
	}
}

// keyType is the key prefix, never the key itself
func keyType(key string) string {
	prefix, _, _ := strings.Cut(key, ":")
	return prefix
}

// getRateLimitKey prefers the API key over the client IP
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if key := requestAPIKey(r); key != "" {
			return "api:" + key
		}
	}
	if byIP {
		return "ip:" + getClientIP(r)
	}
	return ""
}

// getClientIP takes the first valid address from X-Forwarded-For, then
// X-Real-IP, then the connection's remote address.
func getClientIP(r *http.Request) string {
	for candidate := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
		candidate = strings.TrimSpace(candidate)
		if net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
