package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/straye-as/cbam-api/internal/config"
	"github.com/straye-as/cbam-api/internal/domain"
	"go.uber.org/zap"
)

// Middleware handles authentication for HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	apiKey       string
	disabled     bool
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.AuthConfig, logger *zap.Logger) *Middleware {
	if cfg.Disabled {
		logger.Warn("Authentication is disabled; every request runs as the development user")
	}
	return &Middleware{
		jwtValidator: NewJWTValidator(cfg),
		apiKey:       cfg.APIKey,
		disabled:     cfg.Disabled,
		logger:       logger,
	}
}

// Authenticate is the main authentication middleware. An x-api-key header
// authenticates a system integration; otherwise a Bearer token is required.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if m.disabled {
			ctx := WithUserContext(r.Context(), developmentUser())
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if !m.validateAPIKey(apiKey) {
				m.logger.Warn("invalid API key attempt",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				unauthorized(w, "Invalid API key")
				return
			}

			userCtx := systemUser()
			m.logger.Debug("request authenticated",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("auth_type", userCtx.AuthMethod),
				zap.Duration("auth_duration", time.Since(start)),
			)
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "Invalid authorization header format")
			return
		}

		userCtx, err := m.jwtValidator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			unauthorized(w, err.Error())
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("auth_type", userCtx.AuthMethod),
			zap.String("user_id", userCtx.UserID),
			zap.Strings("roles", userCtx.Roles),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireRole middleware ensures user has one of the roles. Administrators
// and system integrations always pass.
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				forbidden(w, "No user context")
				return
			}

			if !userCtx.IsAdmin() && !userCtx.HasAnyRole(roles...) {
				m.logger.Warn("insufficient role",
					zap.String("path", r.URL.Path),
					zap.String("user_id", userCtx.UserID),
					zap.Strings("required", roles),
				)
				forbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func systemUser() *UserContext {
	return &UserContext{
		UserID:      "system",
		DisplayName: "System",
		Email:       "system@straye.io",
		Roles:       []string{RoleAPIService},
		AuthMethod:  MethodAPIKey,
	}
}

func developmentUser() *UserContext {
	return &UserContext{
		UserID:      "dev",
		DisplayName: "Development User",
		Email:       "dev@localhost",
		Roles:       []string{RoleAdmin},
		AuthMethod:  MethodDisabled,
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	writeProblem(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "Unauthorized", detail)
}

func forbidden(w http.ResponseWriter, detail string) {
	writeProblem(w, http.StatusForbidden, domain.ErrorTypeForbidden, "Forbidden", detail)
}

func writeProblem(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
