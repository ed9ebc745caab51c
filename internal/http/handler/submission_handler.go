package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/repository"
	"github.com/straye-as/cbam-api/internal/service"
	"go.uber.org/zap"
)

// SubmissionHandler serves the append-only submission log
type SubmissionHandler struct {
	entryService *service.EntryService
	logger       *zap.Logger
}

func NewSubmissionHandler(entryService *service.EntryService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// List returns a page of submissions. Query: page, pageSize, reportingYear, entryId
// @Summary List submissions
// @Tags Submissions
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param reportingYear query int false "Reporting year"
// @Param entryId query string false "Entry ID"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions [get]
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &repository.SubmissionFilters{}

	year, err := queryIntPtr(r, "reportingYear")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters.ReportingYear = year

	if v := r.URL.Query().Get("entryId"); v != "" {
		entryID, err := uuid.Parse(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid entry ID")
			return
		}
		filters.EntryID = &entryID
	}

	result, err := h.entryService.ListSubmissions(r.Context(), queryInt(r, "page"), queryInt(r, "pageSize"), filters)
	if err != nil {
		handleServiceError(w, h.logger, err, "list submissions")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Get submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} domain.SubmissionDTO
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "submission")
	if !ok {
		return
	}

	submission, err := h.entryService.GetSubmission(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get submission")
		return
	}
	respondJSON(w, http.StatusOK, submission)
}

// Archive returns the snapshot document stored at submit time
// @Summary Archived submission snapshot
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} domain.APIError
// @Failure 501 {object} domain.APIError "No archive store configured"
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions/{id}/archive [get]
func (h *SubmissionHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "submission")
	if !ok {
		return
	}

	snap, err := h.entryService.GetSubmissionArchive(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "read submission archive")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
