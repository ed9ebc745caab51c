package handler

import (
	"net/http"

	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/straye-as/cbam-api/internal/service"
	"go.uber.org/zap"
)

// CalculationHandler runs calculations on ad-hoc records. Nothing is stored.
type CalculationHandler struct {
	calculationService *service.CalculationService
	logger             *zap.Logger
}

func NewCalculationHandler(calculationService *service.CalculationService, logger *zap.Logger) *CalculationHandler {
	return &CalculationHandler{
		calculationService: calculationService,
		logger:             logger,
	}
}

// Calculate returns the official calculation for the posted record
// @Summary Calculate an ad-hoc record
// @Tags Calculations
// @Accept json
// @Produce json
// @Param request body domain.CalculationRequest true "Record"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /calculations [post]
func (h *CalculationHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.CalculationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.calculationService.Calculate(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "calculate")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Preview returns the conservative estimate for the posted record
// @Summary Conservative preview of an ad-hoc record
// @Description Display figure only; never used for submission
// @Tags Calculations
// @Accept json
// @Produce json
// @Param request body domain.CalculationRequest true "Record"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /calculations/preview [post]
func (h *CalculationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req domain.CalculationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, h.calculationService.Preview(r.Context(), &req))
}

// Certificates runs the phase-in formula on explicit totals
// @Summary Certificates for explicit totals
// @Tags Calculations
// @Accept json
// @Produce json
// @Param request body domain.CertificateRequest true "Totals"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /calculations/certificates [post]
func (h *CalculationHandler) Certificates(w http.ResponseWriter, r *http.Request) {
	var req domain.CertificateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.calculationService.Certificates(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "calculate certificates")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// ResolveDefault looks up the default intensity of a good
// @Summary Resolve the marked-up default value for a CN code
// @Tags Calculations
// @Accept json
// @Produce json
// @Param request body domain.ResolveDefaultRequest true "Good"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "No applicable default"
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /defaults/resolve [post]
func (h *CalculationHandler) ResolveDefault(w http.ResponseWriter, r *http.Request) {
	var req domain.ResolveDefaultRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.calculationService.ResolveDefault(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "resolve default value")
		return
	}
	respondJSON(w, http.StatusOK, res)
}
