package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/cbam-api/internal/auth"
	"github.com/straye-as/cbam-api/internal/config"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret   = "test-secret-0123456789"
	testIssuer   = "straye-cbam"
	testAudience = "cbam-api"
	testAPIKey   = "test-api-key-12345"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		APIKey:      testAPIKey,
		JWTSecret:   testSecret,
		JWTIssuer:   testIssuer,
		JWTAudience: testAudience,
	}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-123",
		"name":  "Kari Nordmann",
		"email": "kari@example.com",
		"roles": []string{auth.RoleDeclarant},
		"iss":   testIssuer,
		"aud":   testAudience,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func TestJWTValidator_ValidToken(t *testing.T) {
	v := auth.NewJWTValidator(testAuthConfig())

	user, err := v.ValidateToken(signToken(t, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-123", user.UserID)
	assert.Equal(t, "Kari Nordmann", user.DisplayName)
	assert.Equal(t, "kari@example.com", user.Email)
	assert.Equal(t, []string{auth.RoleDeclarant}, user.Roles)
	assert.Equal(t, auth.MethodJWT, user.AuthMethod)
}

func TestJWTValidator_Rejects(t *testing.T) {
	v := auth.NewJWTValidator(testAuthConfig())

	tests := []struct {
		name   string
		secret string
		mutate func(c jwt.MapClaims)
		target error
	}{
		{"wrong secret", "other-secret", nil, auth.ErrInvalidToken},
		{"expired", testSecret, func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }, auth.ErrExpiredToken},
		{"missing expiry", testSecret, func(c jwt.MapClaims) { delete(c, "exp") }, auth.ErrInvalidToken},
		{"wrong issuer", testSecret, func(c jwt.MapClaims) { c["iss"] = "someone-else" }, auth.ErrInvalidToken},
		{"wrong audience", testSecret, func(c jwt.MapClaims) { c["aud"] = "other-api" }, auth.ErrInvalidToken},
		{"missing subject", testSecret, func(c jwt.MapClaims) { delete(c, "sub") }, auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			if tt.mutate != nil {
				tt.mutate(claims)
			}
			_, err := v.ValidateToken(signToken(t, tt.secret, claims))
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestJWTValidator_RejectsOtherAlgorithms(t *testing.T) {
	v := auth.NewJWTValidator(testAuthConfig())

	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.ValidateToken(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_NoSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = ""
	v := auth.NewJWTValidator(cfg)

	_, err := v.ValidateToken(signToken(t, testSecret, validClaims()))
	assert.ErrorIs(t, err, auth.ErrNoSecret)
}

func TestExtractRoles(t *testing.T) {
	roles := auth.ExtractRoles(jwt.MapClaims{
		"roles": []interface{}{"admin", 42, "verifier"},
		"role":  "declarant api_service",
	})
	assert.Equal(t, []string{"admin", "verifier", "declarant", "api_service"}, roles)
	assert.Empty(t, auth.ExtractRoles(jwt.MapClaims{}))
}

func captureUser(called *bool, user **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*user, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Authenticate(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	token := signToken(t, testSecret, validClaims())

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantMethod string
	}{
		{"api key", map[string]string{"x-api-key": testAPIKey}, http.StatusOK, auth.MethodAPIKey},
		{"invalid api key", map[string]string{"x-api-key": "wrong"}, http.StatusUnauthorized, ""},
		{"bearer token", map[string]string{"Authorization": "Bearer " + token}, http.StatusOK, auth.MethodJWT},
		{"lowercase scheme", map[string]string{"Authorization": "bearer " + token}, http.StatusOK, auth.MethodJWT},
		{"missing header", nil, http.StatusUnauthorized, ""},
		{"basic scheme", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized, ""},
		{"garbage token", map[string]string{"Authorization": "Bearer not-a-jwt"}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			var user *auth.UserContext
			handler := m.Authenticate(captureUser(&called, &user))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				assert.False(t, called)
				var problem domain.APIError
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
				assert.Equal(t, domain.ErrorTypeUnauthorized, problem.Type)
				return
			}
			require.True(t, called)
			require.NotNil(t, user)
			assert.Equal(t, tt.wantMethod, user.AuthMethod)
		})
	}
}

func TestMiddleware_EmptyConfiguredKeyNeverMatches(t *testing.T) {
	cfg := testAuthConfig()
	cfg.APIKey = ""
	m := auth.NewMiddleware(cfg, zap.NewNop())

	var called bool
	var user *auth.UserContext
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-api-key", " ")
	w := httptest.NewRecorder()
	m.Authenticate(captureUser(&called, &user)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestMiddleware_Disabled(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Disabled = true
	m := auth.NewMiddleware(cfg, zap.NewNop())

	var called bool
	var user *auth.UserContext
	w := httptest.NewRecorder()
	m.Authenticate(captureUser(&called, &user)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, user)
	assert.Equal(t, auth.MethodDisabled, user.AuthMethod)
	assert.True(t, user.IsAdmin())
}

func TestMiddleware_RequireRole(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := m.RequireRole(auth.RoleVerifier)(ok)

	tests := []struct {
		name       string
		user       *auth.UserContext
		wantStatus int
	}{
		{"no user", nil, http.StatusForbidden},
		{"declarant", &auth.UserContext{UserID: "u", Roles: []string{auth.RoleDeclarant}}, http.StatusForbidden},
		{"verifier", &auth.UserContext{UserID: "u", Roles: []string{auth.RoleVerifier}}, http.StatusOK},
		{"admin", &auth.UserContext{UserID: "u", Roles: []string{auth.RoleAdmin}}, http.StatusOK},
		{"api service", &auth.UserContext{UserID: "u", Roles: []string{auth.RoleAPIService}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.user != nil {
				req = req.WithContext(auth.WithUserContext(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestActor(t *testing.T) {
	assert.Equal(t, "system", auth.Actor(context.Background()))

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{UserID: "u-1", Email: "a@b.no"})
	assert.Equal(t, "a@b.no", auth.Actor(ctx))

	ctx = auth.WithUserContext(context.Background(), &auth.UserContext{UserID: "u-1"})
	assert.Equal(t, "u-1", auth.Actor(ctx))

	_, ok := auth.FromContext(auth.WithUserContext(context.Background(), nil))
	assert.False(t, ok)
}
