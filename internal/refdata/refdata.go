// Package refdata loads the versioned CBAM reference dataset. The default
// dataset is embedded in the binary; a deployment may point
// reference.path at a newer file so regulatory updates are a data change.
package refdata

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/straye-as/cbam-api/internal/cbam"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDataset []byte

var validate = validator.New()

// Default returns the embedded reference dataset.
func Default() (*cbam.ReferenceData, error) {
	return Parse(defaultDataset)
}

// Parse decodes and validates a YAML (or JSON) reference dataset.
func Parse(data []byte) (*cbam.ReferenceData, error) {
	var ref cbam.ReferenceData
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ref); err != nil {
		return nil, fmt.Errorf("failed to decode reference data: %w", err)
	}
	if err := validate.Struct(&ref); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return nil, fmt.Errorf("invalid reference data: %s failed on %q", ve[0].Namespace(), ve[0].Tag())
		}
		return nil, fmt.Errorf("invalid reference data: %w", err)
	}
	return &ref, nil
}

// LoadFile reads a dataset from disk.
func LoadFile(path string) (*cbam.ReferenceData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data: %w", err)
	}
	return Parse(data)
}

// NewCalculator loads the dataset at path (or the embedded default when path
// is empty) and compiles it into a calculator.
func NewCalculator(path string, logger *zap.Logger) (*cbam.Calculator, error) {
	var (
		ref *cbam.ReferenceData
		err error
	)
	if path == "" {
		ref, err = Default()
	} else {
		ref, err = LoadFile(path)
	}
	if err != nil {
		return nil, err
	}

	calc, err := cbam.NewCalculator(ref)
	if err != nil {
		return nil, err
	}

	source := path
	if source == "" {
		source = "embedded"
	}
	logger.Info("Reference data loaded",
		zap.String("version", calc.Version()),
		zap.String("effective_date", calc.EffectiveDate().Format("2006-01-02")),
		zap.String("source", source),
		zap.Int("categories", len(ref.Categories)),
		zap.Int("phase_in_years", len(ref.PhaseIn)),
	)

	return calc, nil
}

// MustDefaultCalculator returns a calculator over the embedded dataset and
// panics if it is broken. Intended for tests.
func MustDefaultCalculator() *cbam.Calculator {
	ref, err := Default()
	if err != nil {
		panic(err)
	}
	calc, err := cbam.NewCalculator(ref)
	if err != nil {
		panic(err)
	}
	return calc
}
