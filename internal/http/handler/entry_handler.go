package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/straye-as/cbam-api/internal/repository"
	"github.com/straye-as/cbam-api/internal/service"
	"go.uber.org/zap"
)

type EntryHandler struct {
	entryService *service.EntryService
	logger       *zap.Logger
}

func NewEntryHandler(entryService *service.EntryService, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// List returns a page of entries.
// Query: page, pageSize, reportingYear, cnCode (prefix), country,
// validationStatus, verificationStatus, submitted, search, sortBy
// @Summary List entries
// @Tags Entries
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param reportingYear query int false "Reporting year"
// @Param cnCode query string false "CN code prefix"
// @Param country query string false "Country of origin"
// @Param validationStatus query string false "Validation status"
// @Param verificationStatus query string false "Verification status"
// @Param submitted query bool false "Submitted"
// @Param search query string false "Search reference, description and importer"
// @Param sortBy query string false "Sort field"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries [get]
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &repository.EntryFilters{}

	year, err := queryIntPtr(r, "reportingYear")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters.ReportingYear = year

	if v := q.Get("cnCode"); v != "" {
		code := strings.NewReplacer(" ", "", ".", "").Replace(v)
		filters.CNCodePrefix = &code
	}
	if v := q.Get("country"); v != "" {
		filters.CountryOfOrigin = &v
	}
	if v := q.Get("validationStatus"); v != "" {
		status := cbam.ValidationStatus(v)
		filters.ValidationStatus = &status
	}
	if v := q.Get("verificationStatus"); v != "" {
		status := cbam.VerificationStatus(v)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid verificationStatus")
			return
		}
		filters.VerificationStatus = &status
	}
	if v := q.Get("submitted"); v != "" {
		submitted, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "submitted must be true or false")
			return
		}
		filters.Submitted = &submitted
	}
	if v := q.Get("search"); v != "" {
		filters.SearchQuery = &v
	}

	sortBy := repository.EntrySortByCreatedDesc
	if v := q.Get("sortBy"); v != "" {
		sortBy = repository.EntrySortOption(v)
	}

	result, err := h.entryService.List(r.Context(), queryInt(r, "page"), queryInt(r, "pageSize"), filters, sortBy)
	if err != nil {
		handleServiceError(w, h.logger, err, "list entries")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Create entry
// @Tags Entries
// @Accept json
// @Produce json
// @Param request body domain.CreateEntryRequest true "Entry data"
// @Success 201 {object} domain.EntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries [post]
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.entryService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create entry")
		return
	}
	w.Header().Set("Location", "/api/v1/entries/"+entry.ID.String())
	respondJSON(w, http.StatusCreated, entry)
}

// @Summary Get entry
// @Tags Entries
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.EntryDTO
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id} [get]
func (h *EntryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}

	entry, err := h.entryService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get entry")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Update applies a partial update. Fields the current state does not allow
// are reported in the problem's errors map and nothing is saved.
// @Summary Update entry
// @Tags Entries
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param request body domain.UpdateEntryRequest true "Changed fields"
// @Success 200 {object} domain.EntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Field not editable in the current state"
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id} [put]
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}
	var req domain.UpdateEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.entryService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update entry")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// @Summary Delete entry
// @Tags Entries
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id} [delete]
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}

	if err := h.entryService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Add precursor
// @Tags Entries
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param request body domain.PrecursorRequest true "Precursor"
// @Success 201 {object} domain.EntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/precursors [post]
func (h *EntryHandler) AddPrecursor(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}
	var req domain.PrecursorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.entryService.AddPrecursor(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add precursor")
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// @Summary Remove precursor
// @Tags Entries
// @Produce json
// @Param id path string true "Entry ID"
// @Param precursorId path string true "Precursor ID"
// @Success 200 {object} domain.EntryDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/precursors/{precursorId} [delete]
func (h *EntryHandler) RemovePrecursor(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}
	precursorID, ok := urlUUID(w, r, "precursorId", "precursor")
	if !ok {
		return
	}

	entry, err := h.entryService.RemovePrecursor(r.Context(), id, precursorID)
	if err != nil {
		handleServiceError(w, h.logger, err, "remove precursor")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// @Summary Record validation outcome
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param request body domain.RecordValidationRequest true "Outcome"
// @Success 200 {object} domain.EntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/validation [post]
func (h *EntryHandler) RecordValidation(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}
	var req domain.RecordValidationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.entryService.RecordValidation(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "record validation")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// @Summary Record verifier opinion
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param request body domain.RecordVerificationRequest true "Opinion"
// @Success 200 {object} domain.EntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError "Verifier role required"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/verification [post]
func (h *EntryHandler) RecordVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}
	var req domain.RecordVerificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.entryService.RecordVerification(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "record verification")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// @Summary Send a reviewed entry back to validation
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param request body domain.RequestChangeRequest true "Reason"
// @Success 200 {object} domain.EntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/request-change [post]
func (h *EntryHandler) RequestChange(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}
	var req domain.RequestChangeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.entryService.RequestChange(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "request change")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// @Summary Open lifecycle lock
// @Tags Locks
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param request body domain.CreateLockRequest true "Lock"
// @Success 201 {object} domain.EntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/locks [post]
func (h *EntryHandler) AddLock(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}
	var req domain.CreateLockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.entryService.AddLock(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add lock")
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// @Summary Resolve lifecycle lock
// @Tags Locks
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param lockId path string true "Lock ID"
// @Param request body domain.ResolveLockRequest true "Resolution"
// @Success 200 {object} domain.EntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/locks/{lockId}/resolve [post]
func (h *EntryHandler) ResolveLock(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}
	lockID, ok := urlUUID(w, r, "lockId", "lock")
	if !ok {
		return
	}
	var req domain.ResolveLockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.entryService.ResolveLock(r.Context(), id, lockID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "resolve lock")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// @Summary Recalculate entry
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.EntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/recalculate [post]
func (h *EntryHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}

	entry, err := h.entryService.Recalculate(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "recalculate entry")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// @Summary Derived lifecycle state
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.EntryStateDTO
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/state [get]
func (h *EntryHandler) GetState(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}

	state, err := h.entryService.GetState(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get entry state")
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// @Summary Submission gates
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.EntryGatesDTO
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/gates [get]
func (h *EntryHandler) GetGates(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}

	gates, err := h.entryService.GetGates(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "evaluate gates")
		return
	}
	respondJSON(w, http.StatusOK, gates)
}

// Evaluate returns the entry with its state, gates and either the official
// calculation or the preview
// @Summary State, gates and calculation or preview
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.EntryEvaluationDTO
// @Failure 404 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/evaluation [get]
func (h *EntryHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}

	eval, err := h.entryService.Evaluate(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "evaluate entry")
		return
	}
	respondJSON(w, http.StatusOK, eval)
}

// Submit finalizes an entry. A failed gate is a 422 listing every blocked
// reason; the entry is left unchanged.
// @Summary Submit entry
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.SubmitResponse
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Submission gates failed"
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entries/{id}/submit [post]
func (h *EntryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id", "entry")
	if !ok {
		return
	}

	res, err := h.entryService.Submit(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "submit entry")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// RecalculateStale recalculates every open entry made with an older
// reference version
// @Summary Recalculate stale open entries
// @Tags Admin
// @Produce json
// @Param batchSize query int false "Entries per batch"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} domain.APIError "Admin role required"
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/recalculate [post]
func (h *EntryHandler) RecalculateStale(w http.ResponseWriter, r *http.Request) {
	summary, err := h.entryService.RecalculateStale(r.Context(), queryInt(r, "batchSize"))
	if err != nil {
		handleServiceError(w, h.logger, err, "recalculate entries")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
