package cbam

import (
	"fmt"
	"math"
)

// PreviewResult is a deliberately pessimistic estimate for display before an
// entry is final. It must never be used for the submitted report; that uses
// Calculate.
type PreviewResult struct {
	CalculationMethod         CalculationMethod `json:"calculationMethod"`
	DirectEmissionsSpecific   float64           `json:"directEmissionsSpecific"`
	IndirectEmissionsSpecific float64           `json:"indirectEmissionsSpecific"`
	PrecursorEmissions        float64           `json:"precursorEmissions"`
	TotalEmissions            float64           `json:"totalEmissions"`
	MarkupApplied             float64           `json:"markupApplied"`
	ChargeableFactor          float64           `json:"chargeableFactor"`
	ChargeableEmissions       float64           `json:"chargeableEmissions"`
	CertificatesRequired      float64           `json:"certificatesRequired"`
	EstimatedCost             *float64          `json:"estimatedCost,omitempty"`
	Warnings                  []string          `json:"warnings"`
}

// Preview computes the conservative upper-bound estimate:
//   - without a satisfactory verification, zero intensities are replaced by
//     the category's conservative minimum
//   - the markup is the larger of the year ceiling and the country tier
//     whenever the method is not an actual one
//   - no free allocation is granted; the fixed preview chargeable factor is
//     used regardless of the reporting year
//   - total emissions never drop below the emissions floor
func (c *Calculator) Preview(e Entry, certificatePrice *float64) PreviewResult {
	method := e.Method()
	res := PreviewResult{
		CalculationMethod: method,
		ChargeableFactor:  c.data.ref.PreviewChargeableFactor,
		Warnings:          []string{},
	}

	direct := math.Max(0, e.DirectEmissionsSpecific)
	indirect := math.Max(0, e.IndirectEmissionsSpecific)
	quantity := math.Max(0, e.Quantity)

	if !method.IsActual() {
		minimum, named := c.conservativeMinimum(e.CNCode)
		if direct <= c.epsilon() {
			direct = minimum
			if named {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"Direct emissions missing or zero without verification; conservative default %.3f tCO2e/t assumed", minimum))
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"CN code %q is not mapped to a CBAM category; generic conservative default %.3f tCO2e/t assumed", e.CNCode, minimum))
			}
		}

		markup := c.previewMarkup(e)
		res.MarkupApplied = markup
		direct = applyMarkup(direct, markup)
		indirect = applyMarkup(indirect, markup)
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Emissions are not verified; maximum markup of %.0f%% applied", markup*100))
	}

	if quantity == 0 {
		res.Warnings = append(res.Warnings, "Quantity is missing; estimate covers no imported goods")
	}

	agg := c.AggregatePrecursors(e)
	if agg.AutoGenerated {
		res.Warnings = append(res.Warnings, "Precursor data missing; default composition assumed")
	}

	res.DirectEmissionsSpecific = direct
	res.IndirectEmissionsSpecific = indirect
	res.PrecursorEmissions = agg.TotalEmissions

	total := (direct+indirect)*quantity + agg.TotalEmissions
	floor := c.epsilon()
	if total < floor {
		total = floor
		res.Warnings = append(res.Warnings, fmt.Sprintf("Total emissions raised to the %.3f tCO2e floor", floor))
	}
	res.TotalEmissions = total

	if _, ok := c.PhaseIn(e.ReportingYear); !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Reporting year %d is outside the phase-in schedule; no free allocation assumed", e.ReportingYear))
	}

	res.ChargeableEmissions = total * res.ChargeableFactor
	res.CertificatesRequired = res.ChargeableEmissions
	if certificatePrice != nil {
		cost := res.CertificatesRequired * *certificatePrice
		res.EstimatedCost = &cost
	}

	return res
}

// previewMarkup is the year ceiling or the country tier, whichever is higher.
func (c *Calculator) previewMarkup(e Entry) float64 {
	markup, _ := c.CountryMarkup(e.CountryOfOrigin)
	ceiling := c.data.ref.FallbackMarkup
	if p, ok := c.PhaseIn(e.ReportingYear); ok {
		ceiling = p.MarkupCeiling
	}
	return math.Max(markup, ceiling)
}

// conservativeMinimum returns the category minimum, or the generic minimum
// for unmapped codes (second result false).
func (c *Calculator) conservativeMinimum(cnCode string) (float64, bool) {
	if cat, ok := c.CategoryOf(cnCode); ok {
		return c.data.categories[cat].ConservativeMinimum, true
	}
	return c.data.ref.GenericMinimum, false
}
