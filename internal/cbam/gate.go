package cbam

import (
	"fmt"
	"strings"
)

// Gate names a single submission check.
type Gate string

const (
	GateValidation           Gate = "validation"
	GateVerification         Gate = "verification"
	GateLifecycleLocks       Gate = "lifecycle_locks"
	GateNonZeroEmissions     Gate = "non_zero_emissions"
	GateCertificatesRequired Gate = "certificates_required"
	GatePrecursors           Gate = "precursor_completeness"
)

// GateResult is the outcome of one gate.
type GateResult struct {
	Gate   Gate   `json:"gate"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// GateEvaluation aggregates all gates. It is derived data; evaluate it again
// whenever the entry changes.
type GateEvaluation struct {
	CanSubmit      bool         `json:"canSubmit"`
	Gates          []GateResult `json:"gates"`
	BlockedReasons []string     `json:"blockedReasons"`
}

// EvaluateGates runs the six independent submission gates against the raw
// entry and ANDs them. The gates do not depend on each other or on order.
func (c *Calculator) EvaluateGates(e Entry) GateEvaluation {
	gates := []GateResult{
		gateValidation(e),
		gateVerification(e),
		gateLifecycleLocks(e),
		c.gateNonZeroEmissions(e),
		gateCertificates(e),
		c.gatePrecursors(e),
	}

	eval := GateEvaluation{CanSubmit: true, Gates: gates, BlockedReasons: []string{}}
	for _, g := range gates {
		if !g.Passed {
			eval.CanSubmit = false
			eval.BlockedReasons = append(eval.BlockedReasons, g.Reason)
		}
	}
	return eval
}

func gateValidation(e Entry) GateResult {
	if e.ValidationStatus.IsPassed() {
		return GateResult{GateValidation, true, "Entry data validated"}
	}
	status := string(e.ValidationStatus)
	if status == "" {
		status = string(ValidationPending)
	}
	return GateResult{GateValidation, false, fmt.Sprintf("Validation not passed (status: %s)", status)}
}

// gateVerification checks the verification status against the derived
// calculation method. Default values need no verification; every actual
// method requires a satisfactory verifier opinion.
func gateVerification(e Entry) GateResult {
	return CheckVerification(e.Method(), e.VerificationStatus)
}

// CheckVerification applies the verification gate to an explicit method, for
// records that stored a method before it was derived.
func CheckVerification(method CalculationMethod, status VerificationStatus) GateResult {
	switch {
	case method == MethodDefaultValues:
		return GateResult{GateVerification, true, "Default values used; verification not required"}
	case method.IsActual() && status == VerificationSatisfactory:
		return GateResult{GateVerification, true, "Actual emissions verified by accredited verifier"}
	case method.IsActual():
		return GateResult{GateVerification, false, fmt.Sprintf(
			"Calculation method %s requires a satisfactory accredited verification (status: %s)", method, status)}
	default:
		return GateResult{GateVerification, false, fmt.Sprintf("Unknown calculation method %q", method)}
	}
}

func gateLifecycleLocks(e Entry) GateResult {
	active := e.ActiveLocks()
	if len(active) == 0 {
		return GateResult{GateLifecycleLocks, true, "No unresolved lifecycle locks"}
	}
	kinds := make([]string, 0, len(active))
	for _, l := range active {
		kinds = append(kinds, string(l.Type))
	}
	return GateResult{GateLifecycleLocks, false, fmt.Sprintf(
		"%d unresolved lifecycle lock(s): %s", len(active), strings.Join(kinds, ", "))}
}

// gateNonZeroEmissions rejects direct emissions at or below the epsilon. A
// zero value is invalid on its own, not just suspicious.
func (c *Calculator) gateNonZeroEmissions(e Entry) GateResult {
	if e.DirectEmissionsSpecific > c.epsilon() {
		return GateResult{GateNonZeroEmissions, true, "Direct emissions reported"}
	}
	return GateResult{GateNonZeroEmissions, false, fmt.Sprintf(
		"Direct emissions of %.3f tCO2e/t are zero or invalid; zero cannot be reported without verified proof",
		e.DirectEmissionsSpecific)}
}

// gateCertificates requires a positive certificate count unless the entry is
// explicitly below de minimis.
func gateCertificates(e Entry) GateResult {
	if e.BelowDeMinimis() {
		return GateResult{GateCertificatesRequired, true, "Below de minimis threshold; no certificates required"}
	}
	if e.CertificatesRequired == nil {
		return GateResult{GateCertificatesRequired, false, "Certificates required have not been calculated"}
	}
	if *e.CertificatesRequired > 0 {
		return GateResult{GateCertificatesRequired, true, fmt.Sprintf("%.3f certificates required", *e.CertificatesRequired)}
	}
	return GateResult{GateCertificatesRequired, false, "Certificates required is zero for an entry above the de minimis threshold"}
}

func (c *Calculator) gatePrecursors(e Entry) GateResult {
	if !c.IsComplexGood(e.CNCode) {
		return GateResult{GatePrecursors, true, "Simple good; precursors not required"}
	}
	if len(e.Precursors) == 0 {
		return GateResult{GatePrecursors, false, "Complex good requires at least one precursor record"}
	}
	return GateResult{GatePrecursors, true, fmt.Sprintf("%d precursor record(s) present", len(e.Precursors))}
}
