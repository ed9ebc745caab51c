package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/cbam-api/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNoSecret     = errors.New("token validation is not configured")
)

// JWTValidator validates HS256 bearer tokens issued for this API
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		leeway:   30 * time.Second,
	}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userCtx := &UserContext{
		UserID:      extractString(claims, "sub", "oid"),
		DisplayName: extractString(claims, "name", "preferred_username"),
		Email:       extractString(claims, "email", "upn"),
		Roles:       ExtractRoles(claims),
		AuthMethod:  MethodJWT,
	}
	if userCtx.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return userCtx, nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}

// ExtractRoles extracts roles from JWT claims. Both "roles" (array) and
// "role" (string or array) are accepted.
func ExtractRoles(claims jwt.MapClaims) []string {
	roles := []string{}

	for _, key := range []string{"roles", "role"} {
		if val, ok := claims[key]; ok {
			switch v := val.(type) {
			case []interface{}:
				for _, r := range v {
					if str, ok := r.(string); ok {
						roles = append(roles, str)
					}
				}
			case []string:
				roles = append(roles, v...)
			case string:
				roles = append(roles, strings.Fields(v)...)
			}
		}
	}

	return roles
}
