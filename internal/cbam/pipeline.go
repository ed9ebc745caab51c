package cbam

import "fmt"

// CalculateOptions carries inputs that come from outside the entry record.
type CalculateOptions struct {
	CertificatePrice *float64
}

// CalculationResult is the official ("best estimate given data") figure for
// an entry.
type CalculationResult struct {
	CalculationMethod         CalculationMethod    `json:"calculationMethod"`
	Category                  Category             `json:"category,omitempty"`
	DirectEmissionsSpecific   float64              `json:"directEmissionsSpecific"`
	IndirectEmissionsSpecific float64              `json:"indirectEmissionsSpecific"`
	DirectEmissions           float64              `json:"directEmissions"`
	IndirectEmissions         float64              `json:"indirectEmissions"`
	PrecursorEmissions        float64              `json:"precursorEmissions"`
	TotalEmbeddedEmissions    float64              `json:"totalEmbeddedEmissions"`
	FreeAllocationAdjusted    float64              `json:"freeAllocationAdjusted"`
	ChargeableEmissions       float64              `json:"chargeableEmissions"`
	CertificatesRequired      float64              `json:"certificatesRequired"`
	CertificateCost           *float64             `json:"certificateCost,omitempty"`
	MarkupApplied             float64              `json:"markupApplied"`
	DefaultApplied            bool                 `json:"defaultApplied"`
	Precursors                PrecursorAggregation `json:"precursors"`
	Certificate               CertificateResult    `json:"certificate"`
	CalculationNote           string               `json:"calculationNote"`
	ReferenceVersion          string               `json:"referenceVersion"`
}

// Calculate runs the production pipeline: derive the method, resolve
// defaults when there is no verified data, aggregate precursors, total the
// embedded emissions and apply the phase-in formula.
func (c *Calculator) Calculate(e Entry, opts CalculateOptions) (CalculationResult, error) {
	if e.Quantity < 0 || e.DirectEmissionsSpecific < 0 || e.IndirectEmissionsSpecific < 0 || e.CarbonPriceDuePaid < 0 {
		return CalculationResult{}, ErrNegativeInput
	}

	res := CalculationResult{
		CalculationMethod:         e.Method(),
		DirectEmissionsSpecific:   e.DirectEmissionsSpecific,
		IndirectEmissionsSpecific: e.IndirectEmissionsSpecific,
		ReferenceVersion:          c.Version(),
	}
	if cat, ok := c.CategoryOf(e.CNCode); ok {
		res.Category = cat
	}

	var note string
	if res.CalculationMethod.IsActual() {
		note = "Verified actual emissions (EU method)"
	} else if dv, ok := c.ResolveDefault(e.CNCode, e.ProductionRoute, e.CountryOfOrigin); ok {
		res.DirectEmissionsSpecific = dv.Direct
		res.IndirectEmissionsSpecific = dv.Indirect
		res.MarkupApplied = dv.MarkupRate
		res.DefaultApplied = true
		note = fmt.Sprintf("Default values for %s (%s route) with %.0f%% markup", dv.Category, dv.Route, dv.MarkupRate*100)
	} else {
		note = "No applicable default value; reported emissions used unchanged"
	}

	res.Precursors = c.AggregatePrecursors(e)
	res.DirectEmissions = res.DirectEmissionsSpecific * e.Quantity
	res.IndirectEmissions = res.IndirectEmissionsSpecific * e.Quantity
	res.PrecursorEmissions = res.Precursors.TotalEmissions
	res.TotalEmbeddedEmissions = res.DirectEmissions + res.IndirectEmissions + res.PrecursorEmissions

	benchmark := e.BenchmarkIntensity
	if benchmark == nil {
		if b, ok := c.Benchmark(e.CNCode); ok {
			benchmark = &b
		}
	}

	cert, err := c.Certificates(CertificateInput{
		TotalEmissions:   res.TotalEmbeddedEmissions,
		Quantity:         e.Quantity,
		ReportingYear:    e.ReportingYear,
		Benchmark:        benchmark,
		ForeignDeduction: e.CarbonPriceDuePaid,
		CertificatePrice: opts.CertificatePrice,
	})
	if err != nil {
		return CalculationResult{}, err
	}

	res.Certificate = cert
	res.FreeAllocationAdjusted = cert.FreeAllocationAdjusted
	res.ChargeableEmissions = cert.ChargeableEmissions
	res.CertificatesRequired = cert.CertificatesRequired
	res.CertificateCost = cert.CertificateCost

	if cert.Simplified {
		note += "; no benchmark known, free allocation assumed zero"
	}
	if res.Precursors.AutoGenerated {
		note += "; precursors apportioned from default composition"
	}
	res.CalculationNote = note

	return res, nil
}
