package handler

import (
	"net/http"

	"github.com/straye-as/cbam-api/internal/database"
	"github.com/straye-as/cbam-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler serves the liveness and readiness checks
type HealthHandler struct {
	db               *gorm.DB
	referenceService *service.ReferenceService
	logger           *zap.Logger
}

func NewHealthHandler(db *gorm.DB, referenceService *service.ReferenceService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:               db,
		referenceService: referenceService,
		logger:           logger,
	}
}

// Live is the liveness check
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Database reports the connection pool statistics
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	stats := database.HealthCheckWithStats(r.Context(), h.db)
	if stats.Status != "healthy" {
		h.logger.Error("Database health check failed", zap.String("error", stats.Error))
		respondJSON(w, http.StatusServiceUnavailable, stats)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Ready checks every dependency a request needs
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
		allHealthy = false
	} else {
		checks["database"] = map[string]interface{}{"status": "healthy"}
	}

	checks["reference"] = map[string]interface{}{
		"status":  "healthy",
		"version": h.referenceService.Summary().Version,
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
