package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/straye-as/cbam-api/internal/domain"
	"go.uber.org/zap"
)

// Recoverer turns a panicking handler into a 500 problem response
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic in handler",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", r.Header.Get(RequestIDHeader)),
					zap.ByteString("stack", debug.Stack()),
				)
				writeProblem(w, http.StatusInternalServerError, domain.ErrorTypeInternal, "An unexpected error occurred")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit caps request bodies. Reads past the limit fail, which the JSON
// decoders in the handlers report as a bad request.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeProblem(w, http.StatusRequestEntityTooLarge, domain.ErrorTypeBadRequest, "Request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func writeProblem(w http.ResponseWriter, status int, errType, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
