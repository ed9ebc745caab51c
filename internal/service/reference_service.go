package service

import (
	"context"
	"sync/atomic"

	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/straye-as/cbam-api/internal/mapper"
	"github.com/straye-as/cbam-api/internal/refdata"
	"go.uber.org/zap"
)

// ReferenceService owns the active reference dataset. A reload swaps the
// whole calculator at once; callers holding the previous one keep a
// consistent view until they finish.
type ReferenceService struct {
	current atomic.Pointer[cbam.Calculator]
	path    string
	logger  *zap.Logger
}

func NewReferenceService(calc *cbam.Calculator, path string, logger *zap.Logger) *ReferenceService {
	s := &ReferenceService{path: path, logger: logger}
	s.current.Store(calc)
	return s
}

// Calculator returns the calculator for the active dataset
func (s *ReferenceService) Calculator() *cbam.Calculator {
	return s.current.Load()
}

// Reload re-reads the configured dataset. On failure the active dataset
// stays in place.
func (s *ReferenceService) Reload(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	calc, err := refdata.NewCalculator(s.path, s.logger)
	if err != nil {
		s.logger.Error("failed to reload reference data", zap.String("path", s.path), zap.Error(err))
		return "", err
	}

	previous := s.current.Swap(calc)
	if previous != nil && previous.Version() != calc.Version() {
		s.logger.Info("Reference data version changed",
			zap.String("from", previous.Version()),
			zap.String("to", calc.Version()),
		)
	}
	return calc.Version(), nil
}

// Summary describes the active dataset
func (s *ReferenceService) Summary() domain.ReferenceDTO {
	calc := s.Calculator()

	years := []int{}
	for _, p := range calc.PhaseInSchedule() {
		years = append(years, p.Year)
	}
	categories := []string{}
	for _, def := range calc.Categories() {
		categories = append(categories, string(def.Category))
	}

	return domain.ReferenceDTO{
		Version:        calc.Version(),
		EffectiveDate:  calc.EffectiveDate(),
		Regulation:     calc.Regulation(),
		FallbackMarkup: calc.FallbackMarkup(),
		PhaseInYears:   years,
		Categories:     categories,
	}
}

func (s *ReferenceService) PhaseIn() []domain.PhaseInYearDTO {
	return mapper.ToPhaseInDTOs(s.Calculator().PhaseInSchedule())
}

func (s *ReferenceService) Categories() []domain.CategoryDTO {
	defs := s.Calculator().Categories()
	out := make([]domain.CategoryDTO, 0, len(defs))
	for _, def := range defs {
		out = append(out, mapper.ToCategoryDTO(def))
	}
	return out
}

func (s *ReferenceService) CountryTiers() []domain.CountryTierDTO {
	tiers := s.Calculator().CountryTiers()
	out := make([]domain.CountryTierDTO, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, mapper.ToCountryTierDTO(t))
	}
	return out
}
