package cbam

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Category is a CBAM goods category.
type Category string

const (
	CategoryIronSteel   Category = "iron_steel"
	CategoryAluminium   Category = "aluminium"
	CategoryCement      Category = "cement"
	CategoryFertilizers Category = "fertilizers"
	CategoryHydrogen    Category = "hydrogen"
	CategoryElectricity Category = "electricity"
)

// HeadingRange is an inclusive range of 4-digit CN headings.
type HeadingRange struct {
	From int `yaml:"from" json:"from" validate:"gte=100,lte=9999"`
	To   int `yaml:"to" json:"to" validate:"gtefield=From,lte=9999"`
}

// RouteDefault holds unmarked-up default intensities for a production route.
type RouteDefault struct {
	Direct   float64 `yaml:"direct" json:"direct" validate:"gt=0"`
	Indirect float64 `yaml:"indirect" json:"indirect" validate:"gte=0"`
}

// CategoryDefinition describes one goods category.
type CategoryDefinition struct {
	Category     Category                `yaml:"category" json:"category" validate:"required"`
	Name         string                  `yaml:"name" json:"name" validate:"required"`
	Ranges       []HeadingRange          `yaml:"ranges" json:"ranges" validate:"required,min=1,dive"`
	Exclusions   []HeadingRange          `yaml:"exclusions,omitempty" json:"exclusions,omitempty" validate:"dive"`
	DefaultRoute string                  `yaml:"defaultRoute" json:"defaultRoute" validate:"required"`
	Routes       map[string]RouteDefault `yaml:"routes" json:"routes" validate:"required,min=1,dive"`
	// Benchmark is the free-allocation benchmark in tCO2e/t; zero means none known.
	Benchmark float64 `yaml:"benchmark" json:"benchmark" validate:"gte=0"`
	// ConservativeMinimum is substituted by the preview calculator for missing data.
	ConservativeMinimum float64 `yaml:"conservativeMinimum" json:"conservativeMinimum" validate:"gt=0"`
}

// PhaseInYear is one year of the free-allocation phase-out.
type PhaseInYear struct {
	Year int `yaml:"year" json:"year" validate:"gte=2026,lte=2100"`
	// FreeAllocationFactor is the share of the benchmark still freely allocated.
	FreeAllocationFactor float64 `yaml:"freeAllocationFactor" json:"freeAllocationFactor" validate:"gte=0,lte=1"`
	MarkupCeiling        float64 `yaml:"markupCeiling" json:"markupCeiling" validate:"gte=0,lte=1"`
}

// ChargeableShare is the share of the benchmark no longer freely allocated.
// Display only; it never enters the certificate formula.
func (p PhaseInYear) ChargeableShare() float64 {
	return 1 - p.FreeAllocationFactor
}

// PrecursorShare is one line of a complex good's default composition.
type PrecursorShare struct {
	CNCode string  `yaml:"cnCode" json:"cnCode" validate:"required,numeric"`
	Name   string  `yaml:"name" json:"name" validate:"required"`
	Weight float64 `yaml:"weight" json:"weight" validate:"gt=0"`
}

// ComplexGood is a good produced from other CBAM goods.
type ComplexGood struct {
	CNCode     string           `yaml:"cnCode" json:"cnCode" validate:"required,numeric"`
	Name       string           `yaml:"name" json:"name" validate:"required"`
	Precursors []PrecursorShare `yaml:"precursors" json:"precursors" validate:"required,min=1,dive"`
}

// SimpleGood is a good produced directly; it never requires precursors.
type SimpleGood struct {
	CNCode string `yaml:"cnCode" json:"cnCode" validate:"required,numeric"`
	Name   string `yaml:"name" json:"name" validate:"required"`
}

// CountryTier assigns a markup rate to a set of countries.
type CountryTier struct {
	Name      string   `yaml:"name" json:"name" validate:"required"`
	Markup    float64  `yaml:"markup" json:"markup" validate:"gt=0,lte=1"`
	Countries []string `yaml:"countries" json:"countries" validate:"required,min=1,dive,len=2,alpha"`
}

// ReferenceData is the versioned, read-only regulatory dataset the calculator
// runs against. Pass it to NewCalculator and never mutate it afterwards.
type ReferenceData struct {
	Version                 string               `yaml:"version" json:"version" validate:"required"`
	EffectiveDate           string               `yaml:"effectiveDate" json:"effectiveDate" validate:"required,datetime=2006-01-02"`
	Regulation              string               `yaml:"regulation" json:"regulation"`
	Categories              []CategoryDefinition `yaml:"categories" json:"categories" validate:"required,min=1,dive"`
	CountryTiers            []CountryTier        `yaml:"countryTiers" json:"countryTiers" validate:"dive"`
	CountryAliases          map[string]string    `yaml:"countryAliases" json:"countryAliases"`
	FallbackMarkup          float64              `yaml:"fallbackMarkup" json:"fallbackMarkup" validate:"gt=0,lte=1"`
	PhaseIn                 []PhaseInYear        `yaml:"phaseIn" json:"phaseIn" validate:"required,min=1,dive"`
	ComplexGoods            []ComplexGood        `yaml:"complexGoods" json:"complexGoods" validate:"dive"`
	SimpleGoods             []SimpleGood         `yaml:"simpleGoods" json:"simpleGoods" validate:"dive"`
	PreviewChargeableFactor float64              `yaml:"previewChargeableFactor" json:"previewChargeableFactor" validate:"gt=0,lte=1"`
	EmissionsEpsilon        float64              `yaml:"emissionsEpsilon" json:"emissionsEpsilon" validate:"gt=0"`
	GenericMinimum          float64              `yaml:"genericMinimum" json:"genericMinimum" validate:"gt=0"`
}

// compiled holds the lookup structures derived from ReferenceData.
type compiled struct {
	ref           *ReferenceData
	effective     time.Time
	index         *CNIndex
	categories    map[Category]*CategoryDefinition
	countryMarkup map[string]float64
	aliases       map[string]string
	phaseIn       map[int]PhaseInYear
	years         []int
	complexGoods  *prefixTable[ComplexGood]
	simpleGoods   *prefixTable[SimpleGood]
}

// compile checks the dataset for internal consistency and builds the lookup
// structures. Field-level validation (ranges, required values) is done by the
// refdata loader before this is called.
func compile(ref *ReferenceData) (*compiled, error) {
	effective, err := time.Parse("2006-01-02", ref.EffectiveDate)
	if err != nil {
		return nil, fmt.Errorf("invalid effective date %q: %w", ref.EffectiveDate, err)
	}

	c := &compiled{
		ref:           ref,
		effective:     effective,
		categories:    make(map[Category]*CategoryDefinition, len(ref.Categories)),
		countryMarkup: make(map[string]float64),
		aliases:       make(map[string]string, len(ref.CountryAliases)),
		phaseIn:       make(map[int]PhaseInYear, len(ref.PhaseIn)),
		complexGoods:  newPrefixTable[ComplexGood](),
		simpleGoods:   newPrefixTable[SimpleGood](),
	}

	for i := range ref.Categories {
		def := &ref.Categories[i]
		if _, dup := c.categories[def.Category]; dup {
			return nil, fmt.Errorf("category %s defined twice", def.Category)
		}
		if _, ok := def.Routes[def.DefaultRoute]; !ok {
			return nil, fmt.Errorf("category %s: default route %q has no values", def.Category, def.DefaultRoute)
		}
		c.categories[def.Category] = def
	}

	c.index, err = NewCNIndex(ref.Categories)
	if err != nil {
		return nil, err
	}

	for _, tier := range ref.CountryTiers {
		for _, code := range tier.Countries {
			code = strings.ToUpper(code)
			if prev, dup := c.countryMarkup[code]; dup && prev != tier.Markup {
				return nil, fmt.Errorf("country %s assigned to more than one markup tier", code)
			}
			c.countryMarkup[code] = tier.Markup
		}
	}
	for name, code := range ref.CountryAliases {
		c.aliases[normalizeCountryName(name)] = strings.ToUpper(code)
	}

	for _, p := range ref.PhaseIn {
		if _, dup := c.phaseIn[p.Year]; dup {
			return nil, fmt.Errorf("phase-in year %d defined twice", p.Year)
		}
		c.phaseIn[p.Year] = p
		c.years = append(c.years, p.Year)
	}
	sort.Ints(c.years)

	for _, g := range ref.ComplexGoods {
		key, ok := NormalizeCNCode(g.CNCode)
		if !ok {
			return nil, fmt.Errorf("complex good %q: malformed CN code", g.CNCode)
		}
		if err := c.complexGoods.insert(key, g); err != nil {
			return nil, err
		}
	}
	for _, g := range ref.SimpleGoods {
		key, ok := NormalizeCNCode(g.CNCode)
		if !ok {
			return nil, fmt.Errorf("simple good %q: malformed CN code", g.CNCode)
		}
		if _, clash := c.complexGoods.exact(key); clash {
			return nil, fmt.Errorf("CN code %s listed as both simple and complex good", key)
		}
		if err := c.simpleGoods.insert(key, g); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// normalizeCountryName folds a country name or code for alias lookup.
func normalizeCountryName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// prefixTable maps normalized CN codes (4, 6 or 8 digits) to values and
// answers longest-prefix queries.
type prefixTable[T any] struct {
	byKey map[string]T
}

func newPrefixTable[T any]() *prefixTable[T] {
	return &prefixTable[T]{byKey: make(map[string]T)}
}

func (t *prefixTable[T]) insert(key string, v T) error {
	if _, dup := t.byKey[key]; dup {
		return fmt.Errorf("CN code %s listed twice", key)
	}
	t.byKey[key] = v
	return nil
}

func (t *prefixTable[T]) exact(key string) (T, bool) {
	v, ok := t.byKey[key]
	return v, ok
}

// lookup tries the 8-, 6- and 4-digit prefixes of code in that order.
func (t *prefixTable[T]) lookup(code string) (T, bool) {
	for _, n := range []int{8, 6, 4} {
		if len(code) < n {
			continue
		}
		if v, ok := t.byKey[code[:n]]; ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
