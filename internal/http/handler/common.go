package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/straye-as/cbam-api/internal/service"
	"go.uber.org/zap"
)

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondProblem(w http.ResponseWriter, problem domain.APIError) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// respondWithError sends a problem document with the default type for status
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondProblem(w, domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// respondValidationError sends a problem document with one message per field
func respondValidationError(w http.ResponseWriter, err error) {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fieldPath(fe)] = formatValidationError(fe)
		}
	}

	respondProblem(w, domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: fields,
	})
}

// fieldPath drops the struct name from the namespace, so nested precursor
// fields come out as "precursors[0].cnCode"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. On failure
// the response has been written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			respondWithError(w, http.StatusBadRequest, "Request body is required")
		default:
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		}
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

// urlUUID parses a UUID path parameter. On failure a 400 has been written.
func urlUUID(w http.ResponseWriter, r *http.Request, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID", label))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

// queryIntPtr returns nil when the parameter is absent; a malformed value is
// reported as an error
func queryIntPtr(r *http.Request, key string) (*int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

// handleServiceError maps service errors to problem responses. Unexpected
// errors are logged and hidden behind a 500.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	var (
		gateErr  *service.GateError
		stateErr *service.StateError
	)
	switch {
	case errors.As(err, &gateErr):
		respondProblem(w, domain.APIError{
			Type:    domain.ErrorTypeUnprocessable,
			Title:   "Submission Blocked",
			Status:  http.StatusUnprocessableEntity,
			Detail:  "One or more submission gates failed",
			Reasons: gateErr.Evaluation.BlockedReasons,
		})
	case errors.As(err, &stateErr):
		problem := domain.APIError{
			Type:   domain.ErrorTypeConflict,
			Title:  "Not Allowed In State",
			Status: http.StatusConflict,
			Detail: stateErr.Error(),
		}
		if len(stateErr.Fields) > 0 {
			problem.Errors = make(map[string]string, len(stateErr.Fields))
			for _, f := range stateErr.Fields {
				problem.Errors[f] = fmt.Sprintf("Not editable in state %s", stateErr.State)
			}
		}
		respondProblem(w, problem)
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEntrySubmitted):
		respondWithError(w, http.StatusConflict, "Entry has been submitted and is read-only")
	case errors.Is(err, service.ErrLockClosed):
		respondWithError(w, http.StatusConflict, "Lock is already closed")
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrNotAllowedInState):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrArchiveUnavailable):
		respondWithError(w, http.StatusNotImplemented, "Submission archive is not configured")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		logger.Error("failed to "+action, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		return "Entry not found"
	case errors.Is(err, service.ErrPrecursorNotFound):
		return "Precursor not found"
	case errors.Is(err, service.ErrLockNotFound):
		return "Lock not found"
	case errors.Is(err, service.ErrSubmissionNotFound):
		return "Submission not found"
	default:
		return err.Error()
	}
}

// getErrorType returns the problem type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return domain.ErrorTypeForbidden
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	case http.StatusUnprocessableEntity:
		return domain.ErrorTypeUnprocessable
	default:
		return domain.ErrorTypeInternal
	}
}
