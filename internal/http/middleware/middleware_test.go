package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/straye-as/cbam-api/internal/auth"
	"github.com/straye-as/cbam-api/internal/config"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/straye-as/cbam-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS(t *testing.T) {
	base := config.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "x-api-key"},
		MaxAge:         300,
	}

	tests := []struct {
		name        string
		origins     []string
		environment string
		origin      string
		wantAllowed bool
	}{
		{"development allows any origin", nil, "development", "http://localhost:5173", true},
		{"explicit origin allowed", []string{"https://cbam.example.com"}, "production", "https://cbam.example.com", true},
		{"explicit origin rejects others", []string{"https://cbam.example.com"}, "production", "https://evil.example.com", false},
		{"wildcard in production", []string{"*"}, "production", "https://anything.example.com", true},
		{"production without origins denies all", nil, "production", "https://cbam.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.AllowedOrigins = tt.origins
			handler := middleware.CORS(&cfg, tt.environment, zap.NewNop())(okHandler)

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/entries", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if tt.wantAllowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ContentSecurityPolicy: "default-src 'none'",
		ReferrerPolicy:        "no-referrer",
	}

	w := httptest.NewRecorder()
	middleware.SecurityHeaders(cfg)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	h := w.Header()
	assert.Equal(t, "max-age=31536000; includeSubDomains", h.Get("Strict-Transport-Security"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'", h.Get("Content-Security-Policy"))
	assert.Equal(t, "no-referrer", h.Get("Referrer-Policy"))
	assert.Equal(t, "no-store", h.Get("Cache-Control"))
	assert.Empty(t, h.Get("Permissions-Policy"))
}

func TestRateLimiter(t *testing.T) {
	newLimited := func(cfg *config.RateLimitConfig) http.Handler {
		return middleware.NewRateLimiter(cfg, zap.NewNop()).LimitByIP(okHandler)
	}
	hit := func(h http.Handler, path, remote string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("disabled", func(t *testing.T) {
		h := newLimited(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1})
		for i := 0; i < 20; i++ {
			assert.Equal(t, http.StatusOK, hit(h, "/api/v1/entries", "10.0.0.1:1234"))
		}
	})

	t.Run("limit exceeded", func(t *testing.T) {
		h := newLimited(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 3})
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, hit(h, "/api/v1/entries", "10.0.0.2:1234"))
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))

		var problem domain.APIError
		require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))
		assert.Equal(t, domain.ErrorTypeRateLimited, problem.Type)

		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/entries", "10.0.0.3:1234"), "other clients are unaffected")
	})

	t.Run("whitelists", func(t *testing.T) {
		h := newLimited(&config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 1,
			WhitelistIPs:      []string{"127.0.0.1"},
			WhitelistPaths:    []string{"/health", "/health/*"},
		})
		for i := 0; i < 10; i++ {
			assert.Equal(t, http.StatusOK, hit(h, "/api/v1/entries", "127.0.0.1:1234"))
			assert.Equal(t, http.StatusOK, hit(h, "/health", "10.0.0.4:1234"))
			assert.Equal(t, http.StatusOK, hit(h, "/health/db", "10.0.0.4:1234"))
		}
	})

	t.Run("forwarded client IP", func(t *testing.T) {
		h := newLimited(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1})
		send := func(xff string) int {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
			req.RemoteAddr = "10.1.1.1:1234"
			req.Header.Set("X-Forwarded-For", xff)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			return w.Code
		}
		assert.Equal(t, http.StatusOK, send("203.0.113.7, 10.1.1.1"))
		assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
		assert.Equal(t, http.StatusOK, send("203.0.113.8"))
	})

	t.Run("per user behind authentication", func(t *testing.T) {
		rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinuteAuth: 1}, zap.NewNop())
		h := rl.LimitByUser(okHandler)
		send := func(user string) int {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
			req.RemoteAddr = "10.2.2.2:1234"
			req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{UserID: user}))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			return w.Code
		}
		assert.Equal(t, http.StatusOK, send("alice"))
		assert.Equal(t, http.StatusTooManyRequests, send("alice"))
		assert.Equal(t, http.StatusOK, send("bob"), "same IP, different user")
	})
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := middleware.Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(middleware.RequestIDHeader))
		w.WriteHeader(http.StatusConflict)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/entries/x/submit", nil))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	assert.Equal(t, int64(http.StatusConflict), entry.ContextMap()["status_code"])

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	handler.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestRecoverer(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := middleware.Recoverer(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil calculator")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, 1, logs.FilterMessage("panic in handler").Len())
}

func TestBodyLimit(t *testing.T) {
	handler := middleware.BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var v map[string]any
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, small)
	assert.Equal(t, http.StatusOK, w.Code)

	large := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"cnCode":"7208100000000000"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, large)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	unknownLength := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"cnCode":"7208100000000000"}`))
	unknownLength.ContentLength = -1
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, unknownLength)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
