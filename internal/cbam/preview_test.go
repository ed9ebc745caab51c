package cbam_test

import (
	"strings"
	"testing"

	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasWarning(warnings []string, fragment string) bool {
	for _, w := range warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

func TestPreview_UnverifiedZeroUsesConservativeMinimum(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Preview(cbam.Entry{
		CNCode:          "72061000",
		CountryOfOrigin: "GB",
		Quantity:        10,
		ReportingYear:   2030,
	}, nil)

	assert.Equal(t, cbam.MethodDefaultValues, res.CalculationMethod)
	// Country tier is 10% but the year ceiling of 30% wins.
	assert.Equal(t, 0.30, res.MarkupApplied)
	assert.InDelta(t, 2.6, res.DirectEmissionsSpecific, 1e-9)
	assert.InDelta(t, 26.0, res.TotalEmissions, 1e-9)
	assert.Equal(t, 0.975, res.ChargeableFactor)
	assert.InDelta(t, 25.35, res.ChargeableEmissions, 1e-9)
	assert.Equal(t, res.ChargeableEmissions, res.CertificatesRequired)
	assert.Nil(t, res.EstimatedCost)
	assert.True(t, hasWarning(res.Warnings, "conservative default"))
	assert.True(t, hasWarning(res.Warnings, "maximum markup of 30%"))
}

func TestPreview_VerifiedUsesEnteredValues(t *testing.T) {
	calc := newTestCalculator(t)

	e := readyEntry()
	e.Quantity = 10
	e.IndirectEmissionsSpecific = 0.2

	res := calc.Preview(e, ptr(80.0))

	assert.Equal(t, cbam.MethodEU, res.CalculationMethod)
	assert.Zero(t, res.MarkupApplied)
	assert.InDelta(t, 17.0, res.TotalEmissions, 1e-9)
	assert.InDelta(t, 16.575, res.ChargeableEmissions, 1e-9)
	require.NotNil(t, res.EstimatedCost)
	assert.InDelta(t, 1326.0, *res.EstimatedCost, 1e-9)
	assert.Empty(t, res.Warnings)
}

func TestPreview_NeverBelowOfficialCalculation(t *testing.T) {
	calc := newTestCalculator(t)

	entries := []cbam.Entry{
		readyEntry(),
		{CNCode: "72081000", CountryOfOrigin: "JP", Quantity: 100, ReportingYear: 2029},
		{CNCode: "25232900", CountryOfOrigin: "TR", Quantity: 400, ReportingYear: 2033},
	}

	for _, e := range entries {
		preview := calc.Preview(e, nil)
		official, err := calc.Calculate(e, cbam.CalculateOptions{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, preview.CertificatesRequired, official.CertificatesRequired, e.CNCode)
	}
}

func TestPreview_EmissionsFloor(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Preview(cbam.Entry{CNCode: "72061000", ReportingYear: 2026}, nil)

	assert.Equal(t, 0.001, res.TotalEmissions)
	assert.True(t, hasWarning(res.Warnings, "Quantity is missing"))
	assert.True(t, hasWarning(res.Warnings, "floor"))
}

func TestPreview_UnmappedCode(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Preview(cbam.Entry{CNCode: "0101", Quantity: 3, ReportingYear: 2026}, nil)

	assert.InDelta(t, 1.3, res.DirectEmissionsSpecific, 1e-9)
	assert.True(t, hasWarning(res.Warnings, "not mapped to a CBAM category"))
}

func TestPreview_YearOutsideSchedule(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Preview(cbam.Entry{CNCode: "72061000", CountryOfOrigin: "US", Quantity: 1, ReportingYear: 2040}, nil)

	assert.Equal(t, 0.30, res.MarkupApplied)
	assert.Equal(t, 0.975, res.ChargeableFactor)
	assert.True(t, hasWarning(res.Warnings, "outside the phase-in schedule"))
}

func TestPreview_AutoPrecursorWarning(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Preview(cbam.Entry{CNCode: "72081000", CountryOfOrigin: "ZZ", Quantity: 100, ReportingYear: 2026}, nil)

	assert.InDelta(t, 165.56, res.PrecursorEmissions, 1e-6)
	assert.True(t, hasWarning(res.Warnings, "Precursor data missing"))
}
