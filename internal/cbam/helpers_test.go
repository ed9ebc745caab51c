package cbam_test

import (
	"testing"
	"time"

	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/refdata"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(t *testing.T) *cbam.Calculator {
	t.Helper()
	ref, err := refdata.Default()
	require.NoError(t, err)
	calc, err := cbam.NewCalculator(ref)
	require.NoError(t, err)
	return calc
}

func ptr[T any](v T) *T {
	return &v
}

// readyEntry passes every submission gate.
func readyEntry() cbam.Entry {
	return cbam.Entry{
		CNCode:                     "72061000",
		CountryOfOrigin:            "IN",
		Quantity:                   100,
		DirectEmissionsSpecific:    1.5,
		ReportingYear:              2026,
		VerificationStatus:         cbam.VerificationSatisfactory,
		ValidationStatus:           cbam.ValidationValidated,
		DeMinimisThresholdExceeded: ptr(true),
		CertificatesRequired:       ptr(20.52),
	}
}

func submittedAt() *time.Time {
	ts := time.Date(2027, 5, 31, 12, 0, 0, 0, time.UTC)
	return &ts
}

func mustDefaultReference(t *testing.T) *cbam.ReferenceData {
	t.Helper()
	ref, err := refdata.Default()
	require.NoError(t, err)
	return ref
}
