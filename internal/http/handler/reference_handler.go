package handler

import (
	"net/http"

	"github.com/straye-as/cbam-api/internal/service"
	"go.uber.org/zap"
)

// ReferenceHandler exposes the active reference dataset
type ReferenceHandler struct {
	referenceService *service.ReferenceService
	logger           *zap.Logger
}

func NewReferenceHandler(referenceService *service.ReferenceService, logger *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		referenceService: referenceService,
		logger:           logger,
	}
}

// Summary returns the dataset version, effective date and scope
// @Summary Active reference data version
// @Tags Reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reference [get]
func (h *ReferenceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.referenceService.Summary())
}

// @Summary Phase-in schedule
// @Tags Reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reference/phase-in [get]
func (h *ReferenceHandler) PhaseIn(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.referenceService.PhaseIn())
}

// @Summary Goods categories and CN heading bands
// @Tags Reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reference/categories [get]
func (h *ReferenceHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.referenceService.Categories())
}

// @Summary Country markup tiers
// @Tags Reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reference/country-tiers [get]
func (h *ReferenceHandler) CountryTiers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.referenceService.CountryTiers())
}

// Reload re-reads the configured dataset. A broken file leaves the active
// dataset in place and is reported as 422.
// @Summary Reload reference data
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} domain.APIError "Admin role required"
// @Failure 500 {object} domain.APIError "Reload failed; previous dataset kept"
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/reference/reload [post]
func (h *ReferenceHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if _, err := h.referenceService.Reload(r.Context()); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Failed to reload reference data: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.referenceService.Summary())
}
