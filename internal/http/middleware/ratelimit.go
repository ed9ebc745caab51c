package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/straye-as/cbam-api/internal/auth"
	"github.com/straye-as/cbam-api/internal/config"
	"github.com/straye-as/cbam-api/internal/domain"
	"go.uber.org/zap"
)

// RateLimiter limits requests per client IP before authentication and per
// user after it. Whitelisted paths and IPs are never limited.
type RateLimiter struct {
	cfg          *config.RateLimitConfig
	logger       *zap.Logger
	ipLimiter    func(http.Handler) http.Handler
	userLimiter  func(http.Handler) http.Handler
	whitelistIPs map[string]bool
	exactPaths   map[string]bool
	prefixPaths  []string
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:          cfg,
		logger:       logger,
		whitelistIPs: make(map[string]bool),
		exactPaths:   make(map[string]bool),
	}

	for _, ip := range cfg.WhitelistIPs {
		rl.whitelistIPs[ip] = true
	}
	for _, path := range cfg.WhitelistPaths {
		if prefix, ok := strings.CutSuffix(path, "/*"); ok {
			rl.prefixPaths = append(rl.prefixPaths, prefix)
			continue
		}
		rl.exactPaths[path] = true
	}

	rl.ipLimiter = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(rl.keyByIP),
		httprate.WithLimitHandler(rl.rateLimitExceededHandler),
	)
	rl.userLimiter = httprate.Limit(
		cfg.RequestsPerMinuteAuth,
		time.Minute,
		httprate.WithKeyFuncs(rl.keyByUserOrIP),
		httprate.WithLimitHandler(rl.rateLimitExceededHandler),
	)

	logger.Info("Rate limiter initialized",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Int("requests_per_minute_auth", cfg.RequestsPerMinuteAuth),
		zap.Strings("whitelist_ips", cfg.WhitelistIPs),
		zap.Strings("whitelist_paths", cfg.WhitelistPaths),
	)

	return rl
}

// LimitByIP limits by client IP. It belongs in front of authentication.
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	return rl.wrap(next, rl.ipLimiter(next))
}

// LimitByUser limits authenticated requests per user and falls back to the
// client IP. It belongs behind authentication.
func (rl *RateLimiter) LimitByUser(next http.Handler) http.Handler {
	return rl.wrap(next, rl.userLimiter(next))
}

func (rl *RateLimiter) wrap(next, limited http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.isPathWhitelisted(r.URL.Path) || rl.whitelistIPs[clientIP(r)] {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) keyByIP(r *http.Request) (string, error) {
	return "ip:" + clientIP(r), nil
}

func (rl *RateLimiter) keyByUserOrIP(r *http.Request) (string, error) {
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		return "user:" + userCtx.UserID, nil
	}
	return rl.keyByIP(r)
}

func (rl *RateLimiter) isPathWhitelisted(path string) bool {
	if rl.exactPaths[path] {
		return true
	}
	for _, prefix := range rl.prefixPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		userID = userCtx.UserID
	}
	rl.logger.Warn("rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("client_ip", clientIP(r)),
		zap.String("user_id", userID),
	)

	w.Header().Set("Retry-After", "60")
	writeProblem(w, http.StatusTooManyRequests, domain.ErrorTypeRateLimited, "Too many requests. Please try again later.")
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
