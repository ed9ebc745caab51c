package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/straye-as/cbam-api/internal/mapper"
	"go.uber.org/zap"
)

// CalculationService runs the calculation core on ad-hoc records. Nothing is
// persisted.
type CalculationService struct {
	reference        *ReferenceService
	certificatePrice *float64
	logger           *zap.Logger
}

func NewCalculationService(reference *ReferenceService, certificatePrice *float64, logger *zap.Logger) *CalculationService {
	return &CalculationService{
		reference:        reference,
		certificatePrice: certificatePrice,
		logger:           logger,
	}
}

// Calculate returns the official calculation for an ad-hoc record
func (s *CalculationService) Calculate(ctx context.Context, req *domain.CalculationRequest) (*cbam.CalculationResult, error) {
	record := mapper.CalculationRequestToEntry(req)
	res, err := s.reference.Calculator().Calculate(record, cbam.CalculateOptions{
		CertificatePrice: s.price(req.CertificatePrice),
	})
	if err != nil {
		return nil, calculationError(err)
	}
	return &res, nil
}

// Preview returns the conservative estimate for an ad-hoc record
func (s *CalculationService) Preview(ctx context.Context, req *domain.CalculationRequest) *cbam.PreviewResult {
	record := mapper.CalculationRequestToEntry(req)
	res := s.reference.Calculator().Preview(record, s.price(req.CertificatePrice))
	return &res
}

// ResolveDefault looks up the markup-adjusted default intensity of a good
func (s *CalculationService) ResolveDefault(ctx context.Context, req *domain.ResolveDefaultRequest) (*cbam.DefaultValue, error) {
	dv, ok := s.reference.Calculator().ResolveDefault(req.CNCode, req.ProductionRoute, req.CountryOfOrigin)
	if !ok {
		return nil, fmt.Errorf("no default value for CN code %s: %w", req.CNCode, ErrNotFound)
	}
	return &dv, nil
}

// Certificates runs the phase-in formula on explicit totals
func (s *CalculationService) Certificates(ctx context.Context, req *domain.CertificateRequest) (*cbam.CertificateResult, error) {
	res, err := s.reference.Calculator().Certificates(cbam.CertificateInput{
		TotalEmissions:   req.TotalEmissions,
		Quantity:         req.Quantity,
		ReportingYear:    req.ReportingYear,
		Benchmark:        req.Benchmark,
		ForeignDeduction: req.ForeignDeduction,
		CertificatePrice: s.price(req.CertificatePrice),
	})
	if err != nil {
		return nil, calculationError(err)
	}
	return &res, nil
}

func (s *CalculationService) price(override *float64) *float64 {
	if override != nil {
		return override
	}
	return s.certificatePrice
}

// calculationError maps core errors onto service errors
func calculationError(err error) error {
	if errors.Is(err, cbam.ErrUnknownReportingYear) || errors.Is(err, cbam.ErrNegativeInput) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return fmt.Errorf("failed to calculate: %w", err)
}
