package mapper

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/domain"
)

// ToCBAMEntry projects a persisted entry onto the flat record the
// calculation core consumes. While the entry runs on default values, the
// intensities resolved by the last recalculation stand in for the reported
// ones; once verified, the reported intensities apply again.
func ToCBAMEntry(entry *domain.Entry) cbam.Entry {
	e := cbam.Entry{
		CNCode:                     entry.CNCode,
		CountryOfOrigin:            entry.CountryOfOrigin,
		Quantity:                   entry.Quantity,
		ProductionRoute:            entry.ProductionRoute,
		DirectEmissionsSpecific:    entry.DirectEmissionsSpecific,
		IndirectEmissionsSpecific:  entry.IndirectEmissionsSpecific,
		ReportingYear:              entry.ReportingYear,
		VerificationStatus:         entry.VerificationStatus,
		ValidationStatus:           entry.ValidationStatus,
		CarbonPriceDuePaid:         entry.CarbonPriceDuePaid,
		BenchmarkIntensity:         entry.BenchmarkIntensity,
		DeMinimisThresholdExceeded: entry.DeMinimisThresholdExceeded,
		CertificatesRequired:       entry.CertificatesRequired,
		TotalEmbeddedEmissions:     entry.TotalEmbeddedEmissions,
		SubmittedAt:                entry.SubmittedAt,
	}
	if entry.DefaultApplied && e.Method() == cbam.MethodDefaultValues {
		if entry.CalculatedDirectSpecific != nil {
			e.DirectEmissionsSpecific = *entry.CalculatedDirectSpecific
		}
		if entry.CalculatedIndirectSpecific != nil {
			e.IndirectEmissionsSpecific = *entry.CalculatedIndirectSpecific
		}
	}
	for _, p := range entry.Precursors {
		e.Precursors = append(e.Precursors, cbam.Precursor{
			CNCode:            p.CNCode,
			Name:              p.Name,
			Quantity:          p.Quantity,
			EmissionFactor:    p.EmissionFactor,
			EmbeddedEmissions: p.EmbeddedEmissions,
			Source:            p.Source,
			Verified:          p.Verified,
		})
	}
	for _, l := range entry.Locks {
		e.LifecycleLocks = append(e.LifecycleLocks, cbam.LifecycleLock{
			Type:   l.Type,
			Status: l.Status,
			Reason: l.Reason,
		})
	}
	return e
}

// ToEntryDTO converts Entry to EntryDTO, deriving method, category and state
func ToEntryDTO(entry *domain.Entry, calc *cbam.Calculator) domain.EntryDTO {
	record := ToCBAMEntry(entry)
	dto := domain.EntryDTO{
		ID:                         entry.ID,
		Reference:                  entry.Reference,
		GoodsDescription:           entry.GoodsDescription,
		Importer:                   entry.Importer,
		CNCode:                     entry.CNCode,
		CountryOfOrigin:            entry.CountryOfOrigin,
		Quantity:                   entry.Quantity,
		ProductionRoute:            entry.ProductionRoute,
		ReportingYear:              entry.ReportingYear,
		DirectEmissionsSpecific:    entry.DirectEmissionsSpecific,
		IndirectEmissionsSpecific:  entry.IndirectEmissionsSpecific,
		CalculationMethod:          record.Method(),
		VerificationStatus:         entry.VerificationStatus,
		VerifierName:               entry.VerifierName,
		ValidationStatus:           entry.ValidationStatus,
		ValidationNotes:            entry.ValidationNotes,
		CarbonPriceDuePaid:         entry.CarbonPriceDuePaid,
		BenchmarkIntensity:         entry.BenchmarkIntensity,
		DeMinimisThresholdExceeded: entry.DeMinimisThresholdExceeded,
		CalculatedDirectSpecific:   entry.CalculatedDirectSpecific,
		CalculatedIndirectSpecific: entry.CalculatedIndirectSpecific,
		TotalEmbeddedEmissions:     entry.TotalEmbeddedEmissions,
		FreeAllocationAdjusted:     entry.FreeAllocationAdjusted,
		ChargeableEmissions:        entry.ChargeableEmissions,
		CertificatesRequired:       entry.CertificatesRequired,
		MarkupApplied:              entry.MarkupApplied,
		DefaultApplied:             entry.DefaultApplied,
		CalculationNote:            entry.CalculationNote,
		ReferenceVersion:           entry.ReferenceVersion,
		CalculatedAt:               entry.CalculatedAt,
		State:                      calc.DetermineState(record),
		SubmittedAt:                entry.SubmittedAt,
		SubmittedBy:                entry.SubmittedBy,
		Precursors:                 make([]domain.EntryPrecursorDTO, 0, len(entry.Precursors)),
		Locks:                      make([]domain.EntryLockDTO, 0, len(entry.Locks)),
		CreatedBy:                  entry.CreatedBy,
		CreatedAt:                  entry.CreatedAt,
		UpdatedAt:                  entry.UpdatedAt,
	}
	if cat, ok := calc.CategoryOf(entry.CNCode); ok {
		dto.Category = cat
	}
	for i := range entry.Precursors {
		dto.Precursors = append(dto.Precursors, ToEntryPrecursorDTO(&entry.Precursors[i]))
	}
	for i := range entry.Locks {
		dto.Locks = append(dto.Locks, ToEntryLockDTO(&entry.Locks[i]))
	}
	return dto
}

// ToEntryPrecursorDTO converts EntryPrecursor to EntryPrecursorDTO
func ToEntryPrecursorDTO(p *domain.EntryPrecursor) domain.EntryPrecursorDTO {
	return domain.EntryPrecursorDTO{
		ID:                p.ID,
		CNCode:            p.CNCode,
		Name:              p.Name,
		Quantity:          p.Quantity,
		EmissionFactor:    p.EmissionFactor,
		EmbeddedEmissions: p.EmbeddedEmissions,
		Source:            p.Source,
		Verified:          p.Verified,
	}
}

// ToEntryLockDTO converts EntryLock to EntryLockDTO
func ToEntryLockDTO(l *domain.EntryLock) domain.EntryLockDTO {
	return domain.EntryLockDTO{
		ID:         l.ID,
		Type:       l.Type,
		Status:     l.Status,
		Reason:     l.Reason,
		CreatedBy:  l.CreatedBy,
		ResolvedBy: l.ResolvedBy,
		ResolvedAt: l.ResolvedAt,
		CreatedAt:  l.CreatedAt,
	}
}

// ToSubmissionDTO converts Submission to SubmissionDTO
func ToSubmissionDTO(s *domain.Submission) domain.SubmissionDTO {
	return domain.SubmissionDTO{
		ID:                   s.ID,
		EntryID:              s.EntryID,
		ReportingYear:        s.ReportingYear,
		CNCode:               s.CNCode,
		SubmittedBy:          s.SubmittedBy,
		SubmittedAt:          s.SubmittedAt,
		CertificatesRequired: s.CertificatesRequired,
		TotalEmissions:       s.TotalEmissions,
		ReferenceVersion:     s.ReferenceVersion,
		ArchivePath:          s.ArchivePath,
	}
}

// NewEntry builds an unsaved entry from a create request. Validation and
// verification always start out pending.
func NewEntry(req *domain.CreateEntryRequest, createdBy string) *domain.Entry {
	entry := &domain.Entry{
		Reference:                  req.Reference,
		GoodsDescription:           req.GoodsDescription,
		Importer:                   req.Importer,
		CNCode:                     req.CNCode,
		CountryOfOrigin:            req.CountryOfOrigin,
		Quantity:                   req.Quantity,
		ProductionRoute:            req.ProductionRoute,
		ReportingYear:              req.ReportingYear,
		DirectEmissionsSpecific:    req.DirectEmissionsSpecific,
		IndirectEmissionsSpecific:  req.IndirectEmissionsSpecific,
		VerificationStatus:         cbam.VerificationNotVerified,
		ValidationStatus:           cbam.ValidationPending,
		CarbonPriceDuePaid:         req.CarbonPriceDuePaid,
		BenchmarkIntensity:         req.BenchmarkIntensity,
		DeMinimisThresholdExceeded: req.DeMinimisThresholdExceeded,
		CreatedBy:                  createdBy,
	}
	for _, p := range req.Precursors {
		entry.Precursors = append(entry.Precursors, NewEntryPrecursor(uuid.Nil, p))
	}
	return entry
}

// NewEntryPrecursor builds a user-supplied precursor line
func NewEntryPrecursor(entryID uuid.UUID, req domain.PrecursorRequest) domain.EntryPrecursor {
	return domain.EntryPrecursor{
		EntryID:           entryID,
		CNCode:            req.CNCode,
		Name:              req.Name,
		Quantity:          req.Quantity,
		EmissionFactor:    req.EmissionFactor,
		EmbeddedEmissions: req.Quantity * req.EmissionFactor,
		Source:            cbam.PrecursorActual,
		Verified:          req.Verified,
	}
}

// PrecursorsFromCBAM converts core precursor lines into persisted rows
func PrecursorsFromCBAM(entryID uuid.UUID, lines []cbam.Precursor) []domain.EntryPrecursor {
	out := make([]domain.EntryPrecursor, 0, len(lines))
	for _, p := range lines {
		out = append(out, domain.EntryPrecursor{
			EntryID:           entryID,
			CNCode:            p.CNCode,
			Name:              p.Name,
			Quantity:          p.Quantity,
			EmissionFactor:    p.EmissionFactor,
			EmbeddedEmissions: p.EmbeddedEmissions,
			Source:            p.Source,
			Verified:          p.Verified,
		})
	}
	return out
}

// CalculationRequestToEntry builds a transient core record for the
// stateless calculation endpoints
func CalculationRequestToEntry(req *domain.CalculationRequest) cbam.Entry {
	status := req.VerificationStatus
	if status == "" {
		status = cbam.VerificationNotVerified
	}
	e := cbam.Entry{
		CNCode:                     req.CNCode,
		CountryOfOrigin:            req.CountryOfOrigin,
		Quantity:                   req.Quantity,
		ProductionRoute:            req.ProductionRoute,
		DirectEmissionsSpecific:    req.DirectEmissionsSpecific,
		IndirectEmissionsSpecific:  req.IndirectEmissionsSpecific,
		ReportingYear:              req.ReportingYear,
		VerificationStatus:         status,
		ValidationStatus:           cbam.ValidationPending,
		CarbonPriceDuePaid:         req.CarbonPriceDuePaid,
		BenchmarkIntensity:         req.BenchmarkIntensity,
		DeMinimisThresholdExceeded: req.DeMinimisThresholdExceeded,
	}
	for _, p := range req.Precursors {
		e.Precursors = append(e.Precursors, cbam.Precursor{
			CNCode:         p.CNCode,
			Name:           p.Name,
			Quantity:       p.Quantity,
			EmissionFactor: p.EmissionFactor,
			Source:         cbam.PrecursorActual,
			Verified:       p.Verified,
		})
	}
	return e
}

// ApplyCalculation writes an official calculation back onto the entry. The
// reported intensities are kept; the intensities actually used go to the
// calculated columns.
func ApplyCalculation(entry *domain.Entry, res cbam.CalculationResult, at time.Time) {
	direct := res.DirectEmissionsSpecific
	indirect := res.IndirectEmissionsSpecific
	total := res.TotalEmbeddedEmissions
	free := res.FreeAllocationAdjusted
	chargeable := res.ChargeableEmissions
	certs := res.CertificatesRequired
	markup := res.MarkupApplied

	entry.CalculatedDirectSpecific = &direct
	entry.CalculatedIndirectSpecific = &indirect
	entry.TotalEmbeddedEmissions = &total
	entry.FreeAllocationAdjusted = &free
	entry.ChargeableEmissions = &chargeable
	entry.CertificatesRequired = &certs
	entry.MarkupApplied = &markup
	entry.DefaultApplied = res.DefaultApplied
	entry.CalculationNote = res.CalculationNote
	entry.ReferenceVersion = res.ReferenceVersion
	entry.CalculatedAt = &at
}

// ClearCalculation drops stored results after an input changed
func ClearCalculation(entry *domain.Entry) {
	entry.CalculatedDirectSpecific = nil
	entry.CalculatedIndirectSpecific = nil
	entry.TotalEmbeddedEmissions = nil
	entry.FreeAllocationAdjusted = nil
	entry.ChargeableEmissions = nil
	entry.CertificatesRequired = nil
	entry.MarkupApplied = nil
	entry.DefaultApplied = false
	entry.CalculationNote = ""
	entry.CalculatedAt = nil
}

// ToPhaseInDTOs converts the phase-in schedule for display
func ToPhaseInDTOs(years []cbam.PhaseInYear) []domain.PhaseInYearDTO {
	out := make([]domain.PhaseInYearDTO, 0, len(years))
	for _, y := range years {
		out = append(out, domain.PhaseInYearDTO{
			Year:                 y.Year,
			FreeAllocationFactor: y.FreeAllocationFactor,
			ChargeableShare:      y.ChargeableShare(),
			MarkupCeiling:        y.MarkupCeiling,
		})
	}
	return out
}

// ToCategoryDTO converts CategoryDefinition to CategoryDTO
func ToCategoryDTO(def cbam.CategoryDefinition) domain.CategoryDTO {
	return domain.CategoryDTO{
		Category:            def.Category,
		Name:                def.Name,
		Ranges:              def.Ranges,
		Exclusions:          def.Exclusions,
		DefaultRoute:        def.DefaultRoute,
		Routes:              def.Routes,
		Benchmark:           def.Benchmark,
		ConservativeMinimum: def.ConservativeMinimum,
	}
}

// ToCountryTierDTO converts CountryTier to CountryTierDTO
func ToCountryTierDTO(tier cbam.CountryTier) domain.CountryTierDTO {
	return domain.CountryTierDTO{
		Name:      tier.Name,
		Markup:    tier.Markup,
		Countries: tier.Countries,
	}
}

// FormatError wraps a repository error with the entity and operation
func FormatError(entity, operation string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", operation, entity, err)
}
