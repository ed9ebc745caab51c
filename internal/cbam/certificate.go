package cbam

import (
	"fmt"
	"math"
)

// CertificateInput is everything the phase-in formula needs.
type CertificateInput struct {
	TotalEmissions float64
	Quantity       float64
	ReportingYear  int
	// Benchmark is the free-allocation benchmark intensity; nil means unknown.
	Benchmark *float64
	// ForeignDeduction is the carbon price already paid abroad, in tCO2e.
	ForeignDeduction float64
	// CertificatePrice is the EUR price per certificate; nil skips the cost.
	CertificatePrice *float64
}

// CertificateResult is the outcome of the phase-in formula.
type CertificateResult struct {
	ReportingYear          int      `json:"reportingYear"`
	FreeAllocationFactor   float64  `json:"freeAllocationFactor"`
	BenchmarkIntensity     float64  `json:"benchmarkIntensity"`
	FreeAllocationFull     float64  `json:"freeAllocationFull"`
	FreeAllocationAdjusted float64  `json:"freeAllocationAdjusted"`
	ForeignDeduction       float64  `json:"foreignDeduction"`
	ChargeableEmissions    float64  `json:"chargeableEmissions"`
	CertificatesRequired   float64  `json:"certificatesRequired"`
	CertificatePrice       *float64 `json:"certificatePrice,omitempty"`
	CertificateCost        *float64 `json:"certificateCost,omitempty"`
	Simplified             bool     `json:"simplified"`
}

// Certificates converts total embedded emissions into a certificate count:
//
//	free_allocation_full     = benchmark × quantity
//	free_allocation_adjusted = free_allocation_full × free_allocation_factor[year]
//	chargeable               = max(0, total − free_allocation_adjusted − foreign_deduction)
//	certificates             = chargeable
//
// The phase-in factor is applied once, in the free-allocation step. It is not
// multiplied into the certificate count a second time. With no known
// benchmark, free allocation is taken as zero.
func (c *Calculator) Certificates(in CertificateInput) (CertificateResult, error) {
	if in.TotalEmissions < 0 || in.Quantity < 0 || in.ForeignDeduction < 0 {
		return CertificateResult{}, ErrNegativeInput
	}
	phase, ok := c.PhaseIn(in.ReportingYear)
	if !ok {
		return CertificateResult{}, fmt.Errorf("%w: %d", ErrUnknownReportingYear, in.ReportingYear)
	}

	res := CertificateResult{
		ReportingYear:        in.ReportingYear,
		FreeAllocationFactor: phase.FreeAllocationFactor,
		ForeignDeduction:     in.ForeignDeduction,
	}

	if in.Benchmark == nil || *in.Benchmark <= 0 {
		res.Simplified = true
	} else {
		res.BenchmarkIntensity = *in.Benchmark
		res.FreeAllocationFull = *in.Benchmark * in.Quantity
		res.FreeAllocationAdjusted = res.FreeAllocationFull * phase.FreeAllocationFactor
	}

	res.ChargeableEmissions = math.Max(0, in.TotalEmissions-res.FreeAllocationAdjusted-in.ForeignDeduction)
	res.CertificatesRequired = res.ChargeableEmissions

	if in.CertificatePrice != nil {
		price := *in.CertificatePrice
		cost := res.CertificatesRequired * price
		res.CertificatePrice = &price
		res.CertificateCost = &cost
	}

	return res, nil
}
