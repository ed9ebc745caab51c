// Package cbam implements the CBAM certificate-obligation calculation and the
// entry lifecycle rules. Everything here is a pure function of an Entry
// snapshot and an immutable ReferenceData value; there is no I/O and no shared
// mutable state, so a Calculator is safe for concurrent use.
package cbam

import "time"

// CalculationMethod is how embedded emissions were determined.
// It is never chosen by a user; see DeriveCalculationMethod.
type CalculationMethod string

const (
	MethodDefaultValues CalculationMethod = "default_values"
	MethodEU            CalculationMethod = "EU_method"
	MethodActualValues  CalculationMethod = "actual_values"
	MethodCombined      CalculationMethod = "combined"
)

// IsActual reports whether the method relies on verified installation data.
func (m CalculationMethod) IsActual() bool {
	return m == MethodEU || m == MethodActualValues || m == MethodCombined
}

// VerificationStatus is the accredited verifier's opinion on actual data.
type VerificationStatus string

const (
	VerificationNotVerified    VerificationStatus = "not_verified"
	VerificationSatisfactory   VerificationStatus = "accredited_verifier_satisfactory"
	VerificationUnsatisfactory VerificationStatus = "accredited_verifier_unsatisfactory"
)

// IsValid checks if the verification status is a known value
func (v VerificationStatus) IsValid() bool {
	switch v {
	case VerificationNotVerified, VerificationSatisfactory, VerificationUnsatisfactory:
		return true
	}
	return false
}

// ValidationStatus is the outcome of data validation. Several spellings are
// accepted because records arrive from more than one import pipeline.
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationPass      ValidationStatus = "PASS"
	ValidationValid     ValidationStatus = "valid"
	ValidationFlagged   ValidationStatus = "flagged"
	ValidationRejected  ValidationStatus = "rejected"
	ValidationFail      ValidationStatus = "FAIL"
)

// IsPassed reports whether validation succeeded.
func (v ValidationStatus) IsPassed() bool {
	return v == ValidationValidated || v == ValidationPass || v == ValidationValid
}

// IsFailed reports whether validation found problems.
func (v ValidationStatus) IsFailed() bool {
	return v == ValidationFlagged || v == ValidationRejected || v == ValidationFail
}

// LockType identifies what a lifecycle lock is waiting for.
type LockType string

const (
	LockCNCodeChange         LockType = "cn_code_change"
	LockPrecursorDeviation   LockType = "precursor_deviation"
	LockRecalculationRequest LockType = "recalculation_request"
)

// LockStatus is the resolution state of a lifecycle lock.
type LockStatus string

const (
	LockPending  LockStatus = "pending"
	LockApproved LockStatus = "approved"
	LockResolved LockStatus = "resolved"
	LockRejected LockStatus = "rejected"
)

// IsActive reports whether the lock still blocks submission.
// Anything not explicitly closed counts as active.
func (s LockStatus) IsActive() bool {
	switch s {
	case LockApproved, LockResolved, LockRejected:
		return false
	}
	return true
}

// LifecycleLock is a pending-action marker on an entry.
type LifecycleLock struct {
	Type   LockType   `json:"type"`
	Status LockStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// PrecursorSource tells whether a precursor line came from the user or was
// apportioned from the default composition table.
type PrecursorSource string

const (
	PrecursorActual      PrecursorSource = "actual"
	PrecursorAutoDefault PrecursorSource = "auto_default"
)

// Precursor is a CBAM-scope input material consumed to make a complex good.
type Precursor struct {
	CNCode            string          `json:"cnCode"`
	Name              string          `json:"name"`
	Quantity          float64         `json:"quantity"`
	EmissionFactor    float64         `json:"emissionFactor"`
	EmbeddedEmissions float64         `json:"embeddedEmissions"`
	Source            PrecursorSource `json:"source"`
	Verified          bool            `json:"verified"`
}

// Entry is the flat import record the core consumes. It deliberately has no
// calculation-method field.
type Entry struct {
	CNCode                     string             `json:"cnCode"`
	CountryOfOrigin            string             `json:"countryOfOrigin"`
	Quantity                   float64            `json:"quantity"`
	ProductionRoute            string             `json:"productionRoute,omitempty"`
	DirectEmissionsSpecific    float64            `json:"directEmissionsSpecific"`
	IndirectEmissionsSpecific  float64            `json:"indirectEmissionsSpecific"`
	ReportingYear              int                `json:"reportingYear"`
	VerificationStatus         VerificationStatus `json:"verificationStatus"`
	ValidationStatus           ValidationStatus   `json:"validationStatus"`
	Precursors                 []Precursor        `json:"precursors,omitempty"`
	CarbonPriceDuePaid         float64            `json:"carbonPriceDuePaid"`
	BenchmarkIntensity         *float64           `json:"benchmarkIntensity,omitempty"`
	LifecycleLocks             []LifecycleLock    `json:"lifecycleLocks,omitempty"`
	DeMinimisThresholdExceeded *bool              `json:"deMinimisThresholdExceeded,omitempty"`
	CertificatesRequired       *float64           `json:"certificatesRequired,omitempty"`
	TotalEmbeddedEmissions     *float64           `json:"totalEmbeddedEmissions,omitempty"`
	SubmittedAt                *time.Time         `json:"submittedAt,omitempty"`
}

// DeriveCalculationMethod projects the verification status onto the method:
// EU_method if and only if an accredited verifier was satisfied.
func DeriveCalculationMethod(status VerificationStatus) CalculationMethod {
	if status == VerificationSatisfactory {
		return MethodEU
	}
	return MethodDefaultValues
}

// Method returns the derived calculation method for the entry.
func (e *Entry) Method() CalculationMethod {
	return DeriveCalculationMethod(e.VerificationStatus)
}

// ActiveLocks returns the locks that still block submission.
func (e *Entry) ActiveLocks() []LifecycleLock {
	var active []LifecycleLock
	for _, l := range e.LifecycleLocks {
		if l.Status.IsActive() {
			active = append(active, l)
		}
	}
	return active
}

// IsSubmitted reports whether the entry carries a submission marker.
func (e *Entry) IsSubmitted() bool {
	return e.SubmittedAt != nil && !e.SubmittedAt.IsZero()
}

// BelowDeMinimis reports whether the entry is explicitly flagged as below the
// de minimis threshold. An unset flag counts as above it.
func (e *Entry) BelowDeMinimis() bool {
	return e.DeMinimisThresholdExceeded != nil && !*e.DeMinimisThresholdExceeded
}
