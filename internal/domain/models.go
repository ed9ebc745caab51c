package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/cbam"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Base model with common fields. IDs are generated client side so the same
// models work on PostgreSQL and SQLite.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a new UUID when none is set
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Entry is one imported consignment line of CBAM goods. The calculation
// method is not stored; it is always derived from VerificationStatus.
type Entry struct {
	BaseModel
	Reference        string `gorm:"type:varchar(100);index"`
	GoodsDescription string `gorm:"type:varchar(500)"`
	Importer         string `gorm:"type:varchar(200)"`

	CNCode          string  `gorm:"column:cn_code;type:varchar(20);not null;index"`
	CountryOfOrigin string  `gorm:"type:varchar(100)"`
	Quantity        float64 `gorm:"not null;default:0"`
	ProductionRoute string  `gorm:"type:varchar(50)"`
	ReportingYear   int     `gorm:"not null;index"`

	DirectEmissionsSpecific   float64 `gorm:"not null;default:0"`
	IndirectEmissionsSpecific float64 `gorm:"not null;default:0"`

	VerificationStatus cbam.VerificationStatus `gorm:"type:varchar(50);not null;default:'not_verified'"`
	VerifierName       string                  `gorm:"type:varchar(200)"`
	VerifiedAt         *time.Time
	ValidationStatus   cbam.ValidationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ValidationNotes    string                `gorm:"type:text"`
	ValidatedAt        *time.Time

	CarbonPriceDuePaid         float64  `gorm:"not null;default:0"`
	BenchmarkIntensity         *float64 `gorm:"column:benchmark_intensity"`
	DeMinimisThresholdExceeded *bool    `gorm:"column:de_minimis_threshold_exceeded"`

	// Written by recalculation
	CalculatedDirectSpecific   *float64
	CalculatedIndirectSpecific *float64
	TotalEmbeddedEmissions     *float64
	FreeAllocationAdjusted     *float64
	ChargeableEmissions        *float64
	CertificatesRequired       *float64
	MarkupApplied              *float64
	DefaultApplied             bool   `gorm:"not null;default:false"`
	CalculationNote            string `gorm:"type:text"`
	ReferenceVersion           string `gorm:"type:varchar(50)"`
	CalculatedAt               *time.Time

	SubmittedAt *time.Time `gorm:"index"`
	SubmittedBy string     `gorm:"type:varchar(200)"`
	CreatedBy   string     `gorm:"type:varchar(200)"`

	Precursors []EntryPrecursor `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
	Locks      []EntryLock      `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
}

// IsSubmitted reports whether the entry has been submitted and is read-only
func (e *Entry) IsSubmitted() bool {
	return e.SubmittedAt != nil && !e.SubmittedAt.IsZero()
}

// EntryPrecursor is a precursor material line of a complex good.
type EntryPrecursor struct {
	BaseModel
	EntryID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	CNCode            string               `gorm:"column:cn_code;type:varchar(20);not null"`
	Name              string               `gorm:"type:varchar(200)"`
	Quantity          float64              `gorm:"not null;default:0"`
	EmissionFactor    float64              `gorm:"not null;default:0"`
	EmbeddedEmissions float64              `gorm:"not null;default:0"`
	Source            cbam.PrecursorSource `gorm:"type:varchar(20);not null;default:'actual'"`
	Verified          bool                 `gorm:"not null;default:false"`
}

// EntryLock is a pending-action marker that blocks submission until closed.
type EntryLock struct {
	BaseModel
	EntryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type       cbam.LockType   `gorm:"type:varchar(50);not null"`
	Status     cbam.LockStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Reason     string          `gorm:"type:text"`
	CreatedBy  string          `gorm:"type:varchar(200)"`
	ResolvedBy string          `gorm:"type:varchar(200)"`
	ResolvedAt *time.Time
}

// Submission is the append-only record of a successful submit.
type Submission struct {
	BaseModel
	EntryID              uuid.UUID      `gorm:"type:uuid;not null;index"`
	ReportingYear        int            `gorm:"not null;index"`
	CNCode               string         `gorm:"column:cn_code;type:varchar(20);not null"`
	SubmittedBy          string         `gorm:"type:varchar(200)"`
	SubmittedAt          time.Time      `gorm:"not null"`
	CertificatesRequired float64        `gorm:"not null;default:0"`
	TotalEmissions       float64        `gorm:"not null;default:0"`
	ReferenceVersion     string         `gorm:"type:varchar(50);not null"`
	ArchivePath          string         `gorm:"type:varchar(500)"`
	Gates                datatypes.JSON `gorm:"not null"`
	Calculation          datatypes.JSON `gorm:"not null"`
}
