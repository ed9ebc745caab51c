package cbam_test

import (
	"testing"

	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatePrecursors_UserSupplied(t *testing.T) {
	calc := newTestCalculator(t)

	agg := calc.AggregatePrecursors(cbam.Entry{
		CNCode:   "72091500",
		Quantity: 50,
		Precursors: []cbam.Precursor{
			{CNCode: "72083900", Name: "Hot-rolled coil", Quantity: 49, EmissionFactor: 2.0},
			{CNCode: "72021100", Name: "Ferro-manganese", Quantity: 1, EmissionFactor: 3.5, Source: cbam.PrecursorActual, Verified: true},
		},
	})

	assert.True(t, agg.Complex)
	assert.False(t, agg.AutoGenerated)
	require.Len(t, agg.Precursors, 2)
	assert.Equal(t, cbam.PrecursorActual, agg.Precursors[0].Source)
	assert.InDelta(t, 98.0, agg.Precursors[0].EmbeddedEmissions, 1e-9)
	assert.InDelta(t, 50.0, agg.TotalQuantity, 1e-9)
	assert.InDelta(t, 101.5, agg.TotalEmissions, 1e-9)
}

func TestAggregatePrecursors_AutoDefault(t *testing.T) {
	calc := newTestCalculator(t)

	agg := calc.AggregatePrecursors(cbam.Entry{CNCode: "72081000", CountryOfOrigin: "ZZ", Quantity: 100})

	assert.True(t, agg.Complex)
	assert.True(t, agg.AutoGenerated)
	require.Len(t, agg.Precursors, 3)

	// Pig iron (7201) and ferro-manganese (7202) are outside the steel band
	// and take the generic minimum; semi-finished steel takes its default.
	weights := []float64{50, 40, 10}
	factors := []float64{1.0, 2.639, 1.0}
	for i, p := range agg.Precursors {
		assert.Equal(t, cbam.PrecursorAutoDefault, p.Source)
		assert.False(t, p.Verified)
		assert.InDelta(t, weights[i], p.Quantity, 1e-9)
		assert.InDelta(t, factors[i], p.EmissionFactor, 1e-9)
	}
	assert.InDelta(t, 100.0, agg.TotalQuantity, 1e-9)
	assert.InDelta(t, 165.56, agg.TotalEmissions, 1e-6)
}

func TestAggregatePrecursors_WeightsNeedNotSumToOne(t *testing.T) {
	calc := newTestCalculator(t)

	agg := calc.AggregatePrecursors(cbam.Entry{CNCode: "72171010", CountryOfOrigin: "GB", Quantity: 100})

	require.Len(t, agg.Precursors, 1)
	assert.InDelta(t, 105.0, agg.TotalQuantity, 1e-9)
}

func TestAggregatePrecursors_OutOfScopePrecursorUsesGenericMinimum(t *testing.T) {
	ref := mustDefaultReference(t)
	ref.ComplexGoods = append(ref.ComplexGoods, cbam.ComplexGood{
		CNCode: "76169910", Name: "Aluminium articles",
		Precursors: []cbam.PrecursorShare{{CNCode: "39269097", Name: "Plastic fittings", Weight: 0.2}},
	})
	calc, err := cbam.NewCalculator(ref)
	require.NoError(t, err)

	agg := calc.AggregatePrecursors(cbam.Entry{CNCode: "76169910", Quantity: 10})
	require.Len(t, agg.Precursors, 1)
	assert.Equal(t, 1.0, agg.Precursors[0].EmissionFactor)
	assert.InDelta(t, 2.0, agg.TotalEmissions, 1e-9)
}

func TestAggregatePrecursors_SimpleGood(t *testing.T) {
	calc := newTestCalculator(t)

	for _, cn := range []string{"72061000", "28141000", "25231000", "27160000"} {
		assert.True(t, calc.IsSimpleGood(cn), cn)
		assert.False(t, calc.IsComplexGood(cn), cn)

		agg := calc.AggregatePrecursors(cbam.Entry{CNCode: cn, Quantity: 10})
		assert.False(t, agg.Complex)
		assert.False(t, agg.AutoGenerated)
		assert.Empty(t, agg.Precursors)
		assert.Zero(t, agg.TotalEmissions)
	}
}

func TestDefaultPrecursors(t *testing.T) {
	calc := newTestCalculator(t)

	lines := calc.DefaultPrecursors("31023010", "MA", 1000)
	require.Len(t, lines, 2)
	assert.Equal(t, "28141000", lines[0].CNCode)
	assert.InDelta(t, 210.0, lines[0].Quantity, 1e-9)
	assert.InDelta(t, 790.0, lines[1].Quantity, 1e-9)

	assert.Nil(t, calc.DefaultPrecursors("72061000", "MA", 1000))
}

func TestAggregatePrecursors_Idempotent(t *testing.T) {
	calc := newTestCalculator(t)
	e := cbam.Entry{CNCode: "76061100", CountryOfOrigin: "CN", Quantity: 42}

	assert.Equal(t, calc.AggregatePrecursors(e), calc.AggregatePrecursors(e))
}
