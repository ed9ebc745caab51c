package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/straye-as/cbam-api/internal/mapper"
	"github.com/straye-as/cbam-api/internal/refdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func baseEntry() *domain.Entry {
	return &domain.Entry{
		BaseModel:                 domain.BaseModel{ID: uuid.New()},
		CNCode:                    "72081000",
		CountryOfOrigin:           "IN",
		Quantity:                  100,
		ReportingYear:             2026,
		DirectEmissionsSpecific:   0,
		IndirectEmissionsSpecific: 0,
		VerificationStatus:        cbam.VerificationNotVerified,
		ValidationStatus:          cbam.ValidationPending,
		Precursors: []domain.EntryPrecursor{
			{CNCode: "72011011", Quantity: 50, EmissionFactor: 2, EmbeddedEmissions: 100, Source: cbam.PrecursorActual},
		},
		Locks: []domain.EntryLock{
			{Type: cbam.LockCNCodeChange, Status: cbam.LockPending, Reason: "reclassify"},
		},
	}
}

func TestToCBAMEntry(t *testing.T) {
	entry := baseEntry()
	e := mapper.ToCBAMEntry(entry)

	assert.Equal(t, "72081000", e.CNCode)
	assert.Equal(t, 100.0, e.Quantity)
	require.Len(t, e.Precursors, 1)
	assert.Equal(t, 100.0, e.Precursors[0].EmbeddedEmissions)
	require.Len(t, e.LifecycleLocks, 1)
	assert.Equal(t, cbam.LockCNCodeChange, e.LifecycleLocks[0].Type)
	assert.Equal(t, cbam.MethodDefaultValues, e.Method())
}

func TestToCBAMEntry_CalculatedIntensities(t *testing.T) {
	t.Run("default values use resolved intensities", func(t *testing.T) {
		entry := baseEntry()
		entry.DefaultApplied = true
		entry.CalculatedDirectSpecific = ptr(2.535)
		entry.CalculatedIndirectSpecific = ptr(0.104)

		e := mapper.ToCBAMEntry(entry)
		assert.Equal(t, 2.535, e.DirectEmissionsSpecific)
		assert.Equal(t, 0.104, e.IndirectEmissionsSpecific)
	})

	t.Run("verified entry uses reported intensities", func(t *testing.T) {
		entry := baseEntry()
		entry.DirectEmissionsSpecific = 1.2
		entry.VerificationStatus = cbam.VerificationSatisfactory
		entry.DefaultApplied = true
		entry.CalculatedDirectSpecific = ptr(2.535)

		e := mapper.ToCBAMEntry(entry)
		assert.Equal(t, 1.2, e.DirectEmissionsSpecific)
	})
}

func TestToEntryDTO(t *testing.T) {
	calc := refdata.MustDefaultCalculator()
	entry := baseEntry()

	dto := mapper.ToEntryDTO(entry, calc)
	assert.Equal(t, entry.ID, dto.ID)
	assert.Equal(t, cbam.CategoryIronSteel, dto.Category)
	assert.Equal(t, cbam.MethodDefaultValues, dto.CalculationMethod)
	assert.Equal(t, cbam.StateValidationPending, dto.State)
	assert.Len(t, dto.Precursors, 1)
	assert.Len(t, dto.Locks, 1)

	entry.CNCode = "99999999"
	entry.Precursors = nil
	entry.Locks = nil
	dto = mapper.ToEntryDTO(entry, calc)
	assert.Empty(t, dto.Category)
	assert.Equal(t, cbam.StateDraft, dto.State)
	assert.NotNil(t, dto.Precursors)
	assert.NotNil(t, dto.Locks)
}

func TestNewEntry(t *testing.T) {
	req := &domain.CreateEntryRequest{
		CNCode:        "72171010",
		ReportingYear: 2027,
		Quantity:      10,
		Precursors: []domain.PrecursorRequest{
			{CNCode: "72139110", Quantity: 10.5, EmissionFactor: 2},
		},
	}
	entry := mapper.NewEntry(req, "user@example.com")

	assert.Equal(t, cbam.VerificationNotVerified, entry.VerificationStatus)
	assert.Equal(t, cbam.ValidationPending, entry.ValidationStatus)
	assert.Equal(t, "user@example.com", entry.CreatedBy)
	require.Len(t, entry.Precursors, 1)
	assert.Equal(t, cbam.PrecursorActual, entry.Precursors[0].Source)
	assert.Equal(t, 21.0, entry.Precursors[0].EmbeddedEmissions)
}

func TestApplyAndClearCalculation(t *testing.T) {
	entry := baseEntry()
	entry.DirectEmissionsSpecific = 0.5
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	res := cbam.CalculationResult{
		DirectEmissionsSpecific:   2.535,
		IndirectEmissionsSpecific: 0.104,
		TotalEmbeddedEmissions:    429.46,
		FreeAllocationAdjusted:    129.48,
		ChargeableEmissions:       134.42,
		CertificatesRequired:      134.42,
		MarkupApplied:             0.3,
		DefaultApplied:            true,
		CalculationNote:           "defaults",
		ReferenceVersion:          "2026.1",
	}
	mapper.ApplyCalculation(entry, res, at)

	assert.Equal(t, 0.5, entry.DirectEmissionsSpecific, "reported value is kept")
	require.NotNil(t, entry.CalculatedDirectSpecific)
	assert.Equal(t, 2.535, *entry.CalculatedDirectSpecific)
	require.NotNil(t, entry.CertificatesRequired)
	assert.Equal(t, 134.42, *entry.CertificatesRequired)
	assert.True(t, entry.DefaultApplied)
	assert.Equal(t, "2026.1", entry.ReferenceVersion)
	assert.Equal(t, at, *entry.CalculatedAt)

	mapper.ClearCalculation(entry)
	assert.Nil(t, entry.CalculatedDirectSpecific)
	assert.Nil(t, entry.TotalEmbeddedEmissions)
	assert.Nil(t, entry.CertificatesRequired)
	assert.False(t, entry.DefaultApplied)
	assert.Nil(t, entry.CalculatedAt)
}

func TestCalculationRequestToEntry(t *testing.T) {
	req := &domain.CalculationRequest{
		CNCode:        "25232900",
		ReportingYear: 2028,
		Quantity:      5,
		Precursors:    []domain.PrecursorRequest{{CNCode: "25231000", Quantity: 4.5, EmissionFactor: 0.9}},
	}
	e := mapper.CalculationRequestToEntry(req)
	assert.Equal(t, cbam.VerificationNotVerified, e.VerificationStatus)
	assert.Equal(t, cbam.ValidationPending, e.ValidationStatus)
	require.Len(t, e.Precursors, 1)
	assert.Equal(t, cbam.PrecursorActual, e.Precursors[0].Source)

	req.VerificationStatus = cbam.VerificationSatisfactory
	e = mapper.CalculationRequestToEntry(req)
	assert.Equal(t, cbam.MethodEU, e.Method())
}

func TestReferenceDTOs(t *testing.T) {
	calc := refdata.MustDefaultCalculator()

	phaseIn := mapper.ToPhaseInDTOs(calc.PhaseInSchedule())
	require.Len(t, phaseIn, 9)
	assert.Equal(t, 2026, phaseIn[0].Year)
	assert.InDelta(t, 0.025, phaseIn[0].ChargeableShare, 1e-9)

	cats := calc.Categories()
	dto := mapper.ToCategoryDTO(cats[0])
	assert.Equal(t, cats[0].Category, dto.Category)
	assert.Equal(t, cats[0].DefaultRoute, dto.DefaultRoute)

	tier := mapper.ToCountryTierDTO(calc.CountryTiers()[0])
	assert.Equal(t, 0.10, tier.Markup)
}
