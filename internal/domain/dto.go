package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/cbam"
)

// Request DTOs

// PrecursorRequest adds a precursor line to a complex good
type PrecursorRequest struct {
	CNCode         string  `json:"cnCode" validate:"required,min=4,max=20"`
	Name           string  `json:"name,omitempty" validate:"max=200"`
	Quantity       float64 `json:"quantity" validate:"gt=0"`
	EmissionFactor float64 `json:"emissionFactor" validate:"gte=0"`
	Verified       bool    `json:"verified"`
}

// CreateEntryRequest creates an entry. There is no calculation method field:
// the method is derived from the verification status.
type CreateEntryRequest struct {
	Reference                  string             `json:"reference,omitempty" validate:"max=100"`
	GoodsDescription           string             `json:"goodsDescription,omitempty" validate:"max=500"`
	Importer                   string             `json:"importer,omitempty" validate:"max=200"`
	CNCode                     string             `json:"cnCode" validate:"required,min=4,max=20"`
	CountryOfOrigin            string             `json:"countryOfOrigin,omitempty" validate:"max=100"`
	Quantity                   float64            `json:"quantity" validate:"gte=0"`
	ProductionRoute            string             `json:"productionRoute,omitempty" validate:"max=50"`
	ReportingYear              int                `json:"reportingYear" validate:"required,gte=2023,lte=2100"`
	DirectEmissionsSpecific    float64            `json:"directEmissionsSpecific" validate:"gte=0"`
	IndirectEmissionsSpecific  float64            `json:"indirectEmissionsSpecific" validate:"gte=0"`
	CarbonPriceDuePaid         float64            `json:"carbonPriceDuePaid" validate:"gte=0"`
	BenchmarkIntensity         *float64           `json:"benchmarkIntensity,omitempty" validate:"omitempty,gte=0"`
	DeMinimisThresholdExceeded *bool              `json:"deMinimisThresholdExceeded,omitempty"`
	Precursors                 []PrecursorRequest `json:"precursors,omitempty" validate:"dive"`
}

// UpdateEntryRequest is a partial update; nil fields are left unchanged.
// Each present field is checked against the capabilities of the entry's
// current state.
type UpdateEntryRequest struct {
	Reference                  *string  `json:"reference,omitempty" validate:"omitempty,max=100"`
	GoodsDescription           *string  `json:"goodsDescription,omitempty" validate:"omitempty,max=500"`
	Importer                   *string  `json:"importer,omitempty" validate:"omitempty,max=200"`
	CNCode                     *string  `json:"cnCode,omitempty" validate:"omitempty,min=4,max=20"`
	CountryOfOrigin            *string  `json:"countryOfOrigin,omitempty" validate:"omitempty,max=100"`
	Quantity                   *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	ProductionRoute            *string  `json:"productionRoute,omitempty" validate:"omitempty,max=50"`
	ReportingYear              *int     `json:"reportingYear,omitempty" validate:"omitempty,gte=2023,lte=2100"`
	DirectEmissionsSpecific    *float64 `json:"directEmissionsSpecific,omitempty" validate:"omitempty,gte=0"`
	IndirectEmissionsSpecific  *float64 `json:"indirectEmissionsSpecific,omitempty" validate:"omitempty,gte=0"`
	CarbonPriceDuePaid         *float64 `json:"carbonPriceDuePaid,omitempty" validate:"omitempty,gte=0"`
	BenchmarkIntensity         *float64 `json:"benchmarkIntensity,omitempty" validate:"omitempty,gte=0"`
	DeMinimisThresholdExceeded *bool    `json:"deMinimisThresholdExceeded,omitempty"`
}

// RecordValidationRequest stores the outcome of data validation
type RecordValidationRequest struct {
	Status cbam.ValidationStatus `json:"status" validate:"required,oneof=pending validated PASS valid flagged rejected FAIL"`
	Notes  string                `json:"notes,omitempty" validate:"max=2000"`
}

// RecordVerificationRequest stores the accredited verifier's opinion
type RecordVerificationRequest struct {
	Status       cbam.VerificationStatus `json:"status" validate:"required,oneof=not_verified accredited_verifier_satisfactory accredited_verifier_unsatisfactory"`
	VerifierName string                  `json:"verifierName,omitempty" validate:"max=200"`
}

// RequestChangeRequest sends an entry back to validation
type RequestChangeRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// CreateLockRequest opens a lifecycle lock
type CreateLockRequest struct {
	Type   cbam.LockType `json:"type" validate:"required,oneof=cn_code_change precursor_deviation recalculation_request"`
	Reason string        `json:"reason,omitempty" validate:"max=2000"`
}

// ResolveLockRequest closes a lifecycle lock
type ResolveLockRequest struct {
	Status cbam.LockStatus `json:"status" validate:"required,oneof=approved resolved rejected"`
}

// CalculationRequest is an ad-hoc record for the stateless calculation
// endpoints. It is not persisted.
type CalculationRequest struct {
	CNCode                     string                  `json:"cnCode" validate:"required,min=4,max=20"`
	CountryOfOrigin            string                  `json:"countryOfOrigin,omitempty" validate:"max=100"`
	Quantity                   float64                 `json:"quantity" validate:"gte=0"`
	ProductionRoute            string                  `json:"productionRoute,omitempty" validate:"max=50"`
	ReportingYear              int                     `json:"reportingYear" validate:"required"`
	DirectEmissionsSpecific    float64                 `json:"directEmissionsSpecific" validate:"gte=0"`
	IndirectEmissionsSpecific  float64                 `json:"indirectEmissionsSpecific" validate:"gte=0"`
	VerificationStatus         cbam.VerificationStatus `json:"verificationStatus,omitempty" validate:"omitempty,oneof=not_verified accredited_verifier_satisfactory accredited_verifier_unsatisfactory"`
	CarbonPriceDuePaid         float64                 `json:"carbonPriceDuePaid" validate:"gte=0"`
	BenchmarkIntensity         *float64                `json:"benchmarkIntensity,omitempty" validate:"omitempty,gte=0"`
	DeMinimisThresholdExceeded *bool                   `json:"deMinimisThresholdExceeded,omitempty"`
	Precursors                 []PrecursorRequest      `json:"precursors,omitempty" validate:"dive"`
	CertificatePrice           *float64                `json:"certificatePrice,omitempty" validate:"omitempty,gte=0"`
}

// CertificateRequest runs the phase-in formula on explicit totals
type CertificateRequest struct {
	TotalEmissions   float64  `json:"totalEmissions" validate:"gte=0"`
	Quantity         float64  `json:"quantity" validate:"gte=0"`
	ReportingYear    int      `json:"reportingYear" validate:"required"`
	Benchmark        *float64 `json:"benchmark,omitempty" validate:"omitempty,gte=0"`
	ForeignDeduction float64  `json:"foreignDeduction" validate:"gte=0"`
	CertificatePrice *float64 `json:"certificatePrice,omitempty" validate:"omitempty,gte=0"`
}

// ResolveDefaultRequest looks up the default intensity for a good
type ResolveDefaultRequest struct {
	CNCode          string `json:"cnCode" validate:"required,min=4,max=20"`
	ProductionRoute string `json:"productionRoute,omitempty" validate:"max=50"`
	CountryOfOrigin string `json:"countryOfOrigin,omitempty" validate:"max=100"`
}

// Response DTOs

type EntryPrecursorDTO struct {
	ID                uuid.UUID            `json:"id"`
	CNCode            string               `json:"cnCode"`
	Name              string               `json:"name,omitempty"`
	Quantity          float64              `json:"quantity"`
	EmissionFactor    float64              `json:"emissionFactor"`
	EmbeddedEmissions float64              `json:"embeddedEmissions"`
	Source            cbam.PrecursorSource `json:"source"`
	Verified          bool                 `json:"verified"`
}

type EntryLockDTO struct {
	ID         uuid.UUID       `json:"id"`
	Type       cbam.LockType   `json:"type"`
	Status     cbam.LockStatus `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	CreatedBy  string          `json:"createdBy,omitempty"`
	ResolvedBy string          `json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time      `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type EntryDTO struct {
	ID                         uuid.UUID               `json:"id"`
	Reference                  string                  `json:"reference,omitempty"`
	GoodsDescription           string                  `json:"goodsDescription,omitempty"`
	Importer                   string                  `json:"importer,omitempty"`
	CNCode                     string                  `json:"cnCode"`
	Category                   cbam.Category           `json:"category,omitempty"`
	CountryOfOrigin            string                  `json:"countryOfOrigin,omitempty"`
	Quantity                   float64                 `json:"quantity"`
	ProductionRoute            string                  `json:"productionRoute,omitempty"`
	ReportingYear              int                     `json:"reportingYear"`
	DirectEmissionsSpecific    float64                 `json:"directEmissionsSpecific"`
	IndirectEmissionsSpecific  float64                 `json:"indirectEmissionsSpecific"`
	CalculationMethod          cbam.CalculationMethod  `json:"calculationMethod"`
	VerificationStatus         cbam.VerificationStatus `json:"verificationStatus"`
	VerifierName               string                  `json:"verifierName,omitempty"`
	ValidationStatus           cbam.ValidationStatus   `json:"validationStatus"`
	ValidationNotes            string                  `json:"validationNotes,omitempty"`
	CarbonPriceDuePaid         float64                 `json:"carbonPriceDuePaid"`
	BenchmarkIntensity         *float64                `json:"benchmarkIntensity,omitempty"`
	DeMinimisThresholdExceeded *bool                   `json:"deMinimisThresholdExceeded,omitempty"`
	CalculatedDirectSpecific   *float64                `json:"calculatedDirectSpecific,omitempty"`
	CalculatedIndirectSpecific *float64                `json:"calculatedIndirectSpecific,omitempty"`
	TotalEmbeddedEmissions     *float64                `json:"totalEmbeddedEmissions,omitempty"`
	FreeAllocationAdjusted     *float64                `json:"freeAllocationAdjusted,omitempty"`
	ChargeableEmissions        *float64                `json:"chargeableEmissions,omitempty"`
	CertificatesRequired       *float64                `json:"certificatesRequired,omitempty"`
	MarkupApplied              *float64                `json:"markupApplied,omitempty"`
	DefaultApplied             bool                    `json:"defaultApplied"`
	CalculationNote            string                  `json:"calculationNote,omitempty"`
	ReferenceVersion           string                  `json:"referenceVersion,omitempty"`
	CalculatedAt               *time.Time              `json:"calculatedAt,omitempty"`
	State                      cbam.State              `json:"state"`
	SubmittedAt                *time.Time              `json:"submittedAt,omitempty"`
	SubmittedBy                string                  `json:"submittedBy,omitempty"`
	Precursors                 []EntryPrecursorDTO     `json:"precursors"`
	Locks                      []EntryLockDTO          `json:"locks"`
	CreatedBy                  string                  `json:"createdBy,omitempty"`
	CreatedAt                  time.Time               `json:"createdAt"`
	UpdatedAt                  time.Time               `json:"updatedAt"`
}

// EntryStateDTO is the derived state plus the tables the UI renders from
type EntryStateDTO struct {
	EntryID uuid.UUID `json:"entryId"`
	cbam.StateDescription
}

// EntryGatesDTO is a fresh gate evaluation of a stored entry
type EntryGatesDTO struct {
	EntryID uuid.UUID  `json:"entryId"`
	State   cbam.State `json:"state"`
	cbam.GateEvaluation
}

// EntryEvaluationDTO bundles everything derived from a stored entry. Exactly
// one of Calculation and Preview is set, depending on the state's visibility.
type EntryEvaluationDTO struct {
	Entry            EntryDTO                `json:"entry"`
	State            cbam.StateDescription   `json:"state"`
	Gates            cbam.GateEvaluation     `json:"gates"`
	Calculation      *cbam.CalculationResult `json:"calculation,omitempty"`
	CalculationError string                  `json:"calculationError,omitempty"`
	Preview          *cbam.PreviewResult     `json:"preview,omitempty"`
}

type SubmissionDTO struct {
	ID                   uuid.UUID `json:"id"`
	EntryID              uuid.UUID `json:"entryId"`
	ReportingYear        int       `json:"reportingYear"`
	CNCode               string    `json:"cnCode"`
	SubmittedBy          string    `json:"submittedBy,omitempty"`
	SubmittedAt          time.Time `json:"submittedAt"`
	CertificatesRequired float64   `json:"certificatesRequired"`
	TotalEmissions       float64   `json:"totalEmissions"`
	ReferenceVersion     string    `json:"referenceVersion"`
	ArchivePath          string    `json:"archivePath,omitempty"`
}

// SubmitResponse is returned by a successful submit
type SubmitResponse struct {
	Entry      EntryDTO            `json:"entry"`
	Submission SubmissionDTO       `json:"submission"`
	Gates      cbam.GateEvaluation `json:"gates"`
}

// RecalculationSummaryDTO reports a bulk recalculation run
type RecalculationSummaryDTO struct {
	ReferenceVersion string `json:"referenceVersion"`
	Scanned          int    `json:"scanned"`
	Recalculated     int    `json:"recalculated"`
	Failed           int    `json:"failed"`
}

// ReferenceDTO summarizes the loaded reference dataset
type ReferenceDTO struct {
	Version        string    `json:"version"`
	EffectiveDate  time.Time `json:"effectiveDate"`
	Regulation     string    `json:"regulation,omitempty"`
	FallbackMarkup float64   `json:"fallbackMarkup"`
	PhaseInYears   []int     `json:"phaseInYears"`
	Categories     []string  `json:"categories"`
}

type PhaseInYearDTO struct {
	Year                 int     `json:"year"`
	FreeAllocationFactor float64 `json:"freeAllocationFactor"`
	ChargeableShare      float64 `json:"chargeableShare"`
	MarkupCeiling        float64 `json:"markupCeiling"`
}

type CategoryDTO struct {
	Category            cbam.Category                `json:"category"`
	Name                string                       `json:"name"`
	Ranges              []cbam.HeadingRange          `json:"ranges"`
	Exclusions          []cbam.HeadingRange          `json:"exclusions,omitempty"`
	DefaultRoute        string                       `json:"defaultRoute"`
	Routes              map[string]cbam.RouteDefault `json:"routes"`
	Benchmark           float64                      `json:"benchmark"`
	ConservativeMinimum float64                      `json:"conservativeMinimum"`
}

type CountryTierDTO struct {
	Name      string   `json:"name"`
	Markup    float64  `json:"markup"`
	Countries []string `json:"countries"`
}

// AuthUserDTO describes the caller and what the API lets them do
type AuthUserDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Roles      []string `json:"roles"`
	AuthMethod string   `json:"authMethod"`
	CanVerify  bool     `json:"canVerify"`
	IsAdmin    bool     `json:"isAdmin"`
}

// Pagination
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
