package refdata_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/straye-as/cbam-api/internal/refdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const minimalDataset = `
version: "test-1"
effectiveDate: "2027-01-01"
fallbackMarkup: 0.3
previewChargeableFactor: 0.975
emissionsEpsilon: 0.001
genericMinimum: 1.0
phaseIn:
  - { year: 2027, freeAllocationFactor: 0.95, markupCeiling: 0.3 }
categories:
  - category: cement
    name: Cement
    ranges: [{ from: 2507, to: 2523 }]
    defaultRoute: dry-kiln
    routes:
      dry-kiln: { direct: 0.8, indirect: 0.05 }
    benchmark: 0.7
    conservativeMinimum: 0.9
`

func TestDefault(t *testing.T) {
	ref, err := refdata.Default()
	require.NoError(t, err)

	assert.Equal(t, "2026.1", ref.Version)
	assert.Equal(t, "2026-01-01", ref.EffectiveDate)
	assert.Len(t, ref.Categories, 6)
	assert.Len(t, ref.PhaseIn, 9)
	assert.Equal(t, 0.30, ref.FallbackMarkup)
	assert.Equal(t, 0.975, ref.PreviewChargeableFactor)
	assert.NotEmpty(t, ref.ComplexGoods)
	assert.NotEmpty(t, ref.SimpleGoods)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "version: [unterminated"},
		{"unknown field", minimalDataset + "surcharge: 0.1\n"},
		{"missing version", "effectiveDate: \"2027-01-01\"\n"},
		{"zero fallback markup", strings.Replace(minimalDataset, "fallbackMarkup: 0.3", "fallbackMarkup: 0", 1)},
		{"bad date", strings.Replace(minimalDataset, `"2027-01-01"`, `"January 2027"`, 1)},
		{"factor above one", strings.Replace(minimalDataset, "freeAllocationFactor: 0.95", "freeAllocationFactor: 1.5", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := refdata.Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalDataset), 0o600))

	ref, err := refdata.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", ref.Version)

	_, err = refdata.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewCalculator(t *testing.T) {
	calc, err := refdata.NewCalculator("", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "2026.1", calc.Version())

	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalDataset), 0o600))

	calc, err = refdata.NewCalculator(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "test-1", calc.Version())
	_, ok := calc.PhaseIn(2026)
	assert.False(t, ok)

	_, err = refdata.NewCalculator(filepath.Join(t.TempDir(), "nope.yaml"), zap.NewNop())
	assert.Error(t, err)
}

func TestMustDefaultCalculator(t *testing.T) {
	assert.NotPanics(t, func() {
		calc := refdata.MustDefaultCalculator()
		assert.NotNil(t, calc)
	})
}
