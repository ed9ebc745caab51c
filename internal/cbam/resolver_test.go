package cbam_test

import (
	"testing"

	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefault_MarkupAboveBase(t *testing.T) {
	calc := newTestCalculator(t)

	codes := []string{"72081000", "7206", "7229", "76061100", "25232900", "31023010", "28041000", "27160000"}
	countries := []string{"", "ZZ", "Narnia", "GB", "US"}

	for _, cn := range codes {
		for _, country := range countries {
			dv, ok := calc.ResolveDefault(cn, "", country)
			require.True(t, ok, "cn %s", cn)
			assert.Greater(t, dv.MarkupRate, 0.0)
			assert.Greater(t, dv.Direct, dv.BaseDirect, "cn %s country %q", cn, country)
			assert.GreaterOrEqual(t, dv.Indirect, dv.BaseIndirect)
		}
	}
}

func TestResolveDefault_Values(t *testing.T) {
	calc := newTestCalculator(t)

	dv, ok := calc.ResolveDefault("7208 10 00", "", "XK")
	require.True(t, ok)
	assert.Equal(t, cbam.CategoryIronSteel, dv.Category)
	assert.Equal(t, "bf-bof", dv.Route)
	assert.True(t, dv.RouteDefaulted)
	assert.False(t, dv.CountryTiered)
	assert.Equal(t, 0.30, dv.MarkupRate)
	assert.InDelta(t, 2.535, dv.Direct, 1e-9)
	assert.InDelta(t, 0.104, dv.Indirect, 1e-9)
	assert.InDelta(t, 2.639, dv.Total(), 1e-9)

	dv, ok = calc.ResolveDefault("72081000", "Scrap-EAF", "Japan")
	require.True(t, ok)
	assert.Equal(t, "scrap-eaf", dv.Route)
	assert.False(t, dv.RouteDefaulted)
	assert.Equal(t, "JP", dv.Country)
	assert.True(t, dv.CountryTiered)
	assert.InDelta(t, 0.385, dv.Direct, 1e-9)
	assert.InDelta(t, 0.44, dv.Indirect, 1e-9)

	dv, ok = calc.ResolveDefault("72081000", "hydrogen-dri", "US")
	require.True(t, ok)
	assert.Equal(t, "bf-bof", dv.Route)
	assert.True(t, dv.RouteDefaulted)
	assert.Equal(t, 0.20, dv.MarkupRate)
}

func TestResolveDefault_OutOfScope(t *testing.T) {
	calc := newTestCalculator(t)

	for _, cn := range []string{"0101", "30021000", "8471", "72051000", "73181500", "7230", "", "not-a-code"} {
		_, ok := calc.ResolveDefault(cn, "", "GB")
		assert.False(t, ok, "cn %q", cn)
	}
}

func TestCountryMarkup(t *testing.T) {
	calc := newTestCalculator(t)

	tests := []struct {
		name     string
		country  string
		expected float64
		tiered   bool
	}{
		{"carbon pricing code", "GB", 0.10, true},
		{"carbon pricing name", "United Kingdom", 0.10, true},
		{"lower case code", "ca", 0.10, true},
		{"mid risk", "US", 0.20, true},
		{"mid risk padded", " tr ", 0.20, true},
		{"mid risk name", "turkiye", 0.20, true},
		{"known but untiered", "India", 0.30, false},
		{"unknown code", "ZZ", 0.30, false},
		{"unknown name", "Atlantis", 0.30, false},
		{"empty", "", 0.30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup, tiered := calc.CountryMarkup(tt.country)
			assert.Equal(t, tt.expected, markup)
			assert.Equal(t, tt.tiered, tiered)
		})
	}
}

func TestResolveDefault_Idempotent(t *testing.T) {
	calc := newTestCalculator(t)

	first, ok1 := calc.ResolveDefault("76061100", "secondary", "BR")
	second, ok2 := calc.ResolveDefault("76061100", "secondary", "BR")
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}
