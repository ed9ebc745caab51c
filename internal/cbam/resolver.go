package cbam

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultValue is a markup-adjusted default emissions intensity.
type DefaultValue struct {
	Category       Category `json:"category"`
	Route          string   `json:"route"`
	BaseDirect     float64  `json:"baseDirect"`
	BaseIndirect   float64  `json:"baseIndirect"`
	Direct         float64  `json:"direct"`
	Indirect       float64  `json:"indirect"`
	MarkupRate     float64  `json:"markupRate"`
	Country        string   `json:"country"`
	CountryTiered  bool     `json:"countryTiered"`
	RouteDefaulted bool     `json:"routeDefaulted"`
}

// Total is the combined direct and indirect intensity.
func (d DefaultValue) Total() float64 {
	return d.Direct + d.Indirect
}

// ResolveDefault returns the default intensity for a CN code, production route
// and country of origin. The second result is false when the code is outside
// CBAM scope; callers treat that as "not applicable", not as an error.
func (c *Calculator) ResolveDefault(cnCode, route, country string) (DefaultValue, bool) {
	cat, ok := c.CategoryOf(cnCode)
	if !ok {
		return DefaultValue{}, false
	}
	def := c.data.categories[cat]

	routeKey, routeDefaulted := c.resolveRoute(def, route)
	base := def.Routes[routeKey]

	markup, tiered := c.CountryMarkup(country)

	return DefaultValue{
		Category:       cat,
		Route:          routeKey,
		BaseDirect:     base.Direct,
		BaseIndirect:   base.Indirect,
		Direct:         applyMarkup(base.Direct, markup),
		Indirect:       applyMarkup(base.Indirect, markup),
		MarkupRate:     markup,
		Country:        c.NormalizeCountry(country),
		CountryTiered:  tiered,
		RouteDefaulted: routeDefaulted,
	}, true
}

// resolveRoute picks the route's values, falling back to the category default.
func (c *Calculator) resolveRoute(def *CategoryDefinition, route string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(route))
	if key != "" {
		for name := range def.Routes {
			if strings.ToLower(name) == key {
				return name, false
			}
		}
	}
	return def.DefaultRoute, true
}

// CountryMarkup returns the markup tier for a country. Countries missing from
// the table get the fallback (maximum) markup; the second result reports
// whether a tier matched.
func (c *Calculator) CountryMarkup(country string) (float64, bool) {
	if m, ok := c.data.countryMarkup[c.NormalizeCountry(country)]; ok {
		return m, true
	}
	return c.data.ref.FallbackMarkup, false
}

// NormalizeCountry turns an ISO alpha-2 code or a known English name into an
// upper-case alpha-2 code. Unknown values are returned upper-cased.
func (c *Calculator) NormalizeCountry(country string) string {
	if code, ok := c.data.aliases[normalizeCountryName(country)]; ok {
		return code
	}
	return strings.ToUpper(strings.TrimSpace(country))
}

// applyMarkup returns base × (1 + markup) rounded to 3 decimals.
func applyMarkup(base, markup float64) float64 {
	return round3(decimal.NewFromFloat(base).Mul(decimal.NewFromFloat(1).Add(decimal.NewFromFloat(markup))))
}

func round3(d decimal.Decimal) float64 {
	return d.Round(3).InexactFloat64()
}
