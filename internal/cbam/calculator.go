package cbam

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownReportingYear is returned when a year is outside the phase-in table
	ErrUnknownReportingYear = errors.New("reporting year not covered by phase-in schedule")

	// ErrNegativeInput is returned when a quantity or emissions figure is negative
	ErrNegativeInput = errors.New("quantities and emissions must not be negative")
)

// Calculator evaluates entries against one compiled ReferenceData version.
// It holds no mutable state.
type Calculator struct {
	data *compiled
}

// NewCalculator compiles the reference data and returns a calculator bound to it.
func NewCalculator(ref *ReferenceData) (*Calculator, error) {
	if ref == nil {
		return nil, errors.New("reference data is required")
	}
	data, err := compile(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid reference data %s: %w", ref.Version, err)
	}
	return &Calculator{data: data}, nil
}

// Version returns the reference data version tag.
func (c *Calculator) Version() string {
	return c.data.ref.Version
}

// EffectiveDate returns the regulation date the reference data applies from.
func (c *Calculator) EffectiveDate() time.Time {
	return c.data.effective
}

// Regulation returns the free-text legal basis of the dataset.
func (c *Calculator) Regulation() string {
	return c.data.ref.Regulation
}

// PhaseIn returns the phase-in parameters for a reporting year.
func (c *Calculator) PhaseIn(year int) (PhaseInYear, bool) {
	p, ok := c.data.phaseIn[year]
	return p, ok
}

// PhaseInSchedule returns all phase-in years in ascending order.
func (c *Calculator) PhaseInSchedule() []PhaseInYear {
	out := make([]PhaseInYear, 0, len(c.data.years))
	for _, y := range c.data.years {
		out = append(out, c.data.phaseIn[y])
	}
	return out
}

// Categories returns the category definitions in dataset order.
func (c *Calculator) Categories() []CategoryDefinition {
	out := make([]CategoryDefinition, len(c.data.ref.Categories))
	copy(out, c.data.ref.Categories)
	return out
}

// CountryTiers returns the configured markup tiers.
func (c *Calculator) CountryTiers() []CountryTier {
	out := make([]CountryTier, len(c.data.ref.CountryTiers))
	copy(out, c.data.ref.CountryTiers)
	return out
}

// FallbackMarkup is applied to every country absent from the tier table.
func (c *Calculator) FallbackMarkup() float64 {
	return c.data.ref.FallbackMarkup
}

// CategoryOf maps a CN code to its goods category.
func (c *Calculator) CategoryOf(cnCode string) (Category, bool) {
	return c.data.index.Category(cnCode)
}

// Benchmark returns the free-allocation benchmark for a CN code's category.
func (c *Calculator) Benchmark(cnCode string) (float64, bool) {
	cat, ok := c.CategoryOf(cnCode)
	if !ok {
		return 0, false
	}
	def := c.data.categories[cat]
	if def.Benchmark <= 0 {
		return 0, false
	}
	return def.Benchmark, true
}

// IsComplexGood reports whether the CN code has a default precursor composition.
func (c *Calculator) IsComplexGood(cnCode string) bool {
	_, ok := c.complexGood(cnCode)
	return ok
}

// IsSimpleGood reports whether the CN code is listed as produced directly.
func (c *Calculator) IsSimpleGood(cnCode string) bool {
	code, ok := NormalizeCNCode(cnCode)
	if !ok {
		return false
	}
	_, ok = c.data.simpleGoods.lookup(code)
	return ok
}

func (c *Calculator) complexGood(cnCode string) (ComplexGood, bool) {
	code, ok := NormalizeCNCode(cnCode)
	if !ok {
		return ComplexGood{}, false
	}
	// A simple-good listing is more specific than a complex-good prefix.
	if _, simple := c.data.simpleGoods.lookup(code); simple {
		return ComplexGood{}, false
	}
	return c.data.complexGoods.lookup(code)
}

func (c *Calculator) epsilon() float64 {
	return c.data.ref.EmissionsEpsilon
}
