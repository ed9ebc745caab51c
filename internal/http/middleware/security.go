package middleware

import (
	"fmt"
	"net/http"

	"github.com/straye-as/cbam-api/internal/config"
)

// SecurityHeaders adds the configured security headers to every response.
// Empty settings leave the header out.
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	static := map[string]string{
		"X-Frame-Options":         cfg.FrameOptions,
		"Content-Security-Policy": cfg.ContentSecurityPolicy,
		"Referrer-Policy":         cfg.ReferrerPolicy,
		"Permissions-Policy":      cfg.PermissionsPolicy,
	}
	if cfg.ContentTypeNosniff {
		static["X-Content-Type-Options"] = "nosniff"
	}
	if cfg.EnableHSTS {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		static["Strict-Transport-Security"] = hsts
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range static {
				if value != "" {
					h.Set(name, value)
				}
			}
			// Submission archives and entry data must never be cached by proxies
			h.Set("Cache-Control", "no-store")
			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}
