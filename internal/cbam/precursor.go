package cbam

// PrecursorAggregation is the precursor contribution to an entry's embedded
// emissions.
type PrecursorAggregation struct {
	Complex        bool        `json:"complex"`
	AutoGenerated  bool        `json:"autoGenerated"`
	Precursors     []Precursor `json:"precursors"`
	TotalQuantity  float64     `json:"totalQuantity"`
	TotalEmissions float64     `json:"totalEmissions"`
}

// AggregatePrecursors sums embedded emissions of the entry's precursors.
//
// User-supplied precursors are used as given (quantity × factor). A complex
// good without any precursors gets default lines apportioned from the
// composition table by weight fraction of the entry quantity, marked
// auto_default and unverified. The weight fractions are a heuristic
// apportionment and need not add up to one; no mass balance is implied.
func (c *Calculator) AggregatePrecursors(e Entry) PrecursorAggregation {
	good, complexGood := c.complexGood(e.CNCode)
	agg := PrecursorAggregation{Complex: complexGood}

	if len(e.Precursors) > 0 {
		agg.Precursors = make([]Precursor, 0, len(e.Precursors))
		for _, p := range e.Precursors {
			p.EmbeddedEmissions = p.Quantity * p.EmissionFactor
			if p.Source == "" {
				p.Source = PrecursorActual
			}
			agg.add(p)
		}
		return agg
	}

	if !complexGood {
		return agg
	}

	agg.AutoGenerated = true
	agg.Precursors = make([]Precursor, 0, len(good.Precursors))
	for _, share := range good.Precursors {
		qty := e.Quantity * share.Weight
		factor := c.precursorFactor(share.CNCode, e.CountryOfOrigin)
		agg.add(Precursor{
			CNCode:            share.CNCode,
			Name:              share.Name,
			Quantity:          qty,
			EmissionFactor:    factor,
			EmbeddedEmissions: qty * factor,
			Source:            PrecursorAutoDefault,
			Verified:          false,
		})
	}
	return agg
}

// DefaultPrecursors returns the auto-generated precursor lines for a complex
// good of the given quantity, or nil for anything else.
func (c *Calculator) DefaultPrecursors(cnCode, country string, quantity float64) []Precursor {
	agg := c.AggregatePrecursors(Entry{CNCode: cnCode, CountryOfOrigin: country, Quantity: quantity})
	if !agg.AutoGenerated {
		return nil
	}
	return agg.Precursors
}

func (a *PrecursorAggregation) add(p Precursor) {
	a.Precursors = append(a.Precursors, p)
	a.TotalQuantity += p.Quantity
	a.TotalEmissions += p.EmbeddedEmissions
}

// precursorFactor is the markup-adjusted total default intensity of a
// precursor, or the generic minimum when the precursor is out of scope.
func (c *Calculator) precursorFactor(cnCode, country string) float64 {
	if dv, ok := c.ResolveDefault(cnCode, "", country); ok {
		return dv.Total()
	}
	return c.data.ref.GenericMinimum
}
