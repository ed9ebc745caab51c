package domain

// APIError is the RFC 7807 problem document returned by every failing endpoint
type APIError struct {
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Status  int               `json:"status"`
	Detail  string            `json:"detail,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Reasons []string          `json:"reasons,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// ValidationMessages maps validator tags to user-facing messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"lt":       "Must be less than maximum value",
	"uuid":     "Must be a valid UUID",
	"oneof":    "Must be one of the allowed values",
	"numeric":  "Must be a numeric value",
	"alpha":    "Must contain only alphabetic characters",
	"len":      "Must be exactly the specified length",
	"datetime": "Must be a date in YYYY-MM-DD format",
	"gtefield": "Must not be smaller than the lower bound",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeNotFound      = "not_found"
	ErrorTypeBadRequest    = "bad_request"
	ErrorTypeConflict      = "conflict"
	ErrorTypeUnauthorized  = "unauthorized"
	ErrorTypeForbidden     = "forbidden"
	ErrorTypeUnprocessable = "unprocessable_entity"
	ErrorTypeRateLimited   = "rate_limited"
	ErrorTypeInternal      = "internal_error"
)
