package cbam

import "fmt"

// State is the derived lifecycle state of an entry.
type State string

const (
	StateDraft             State = "DRAFT"
	StateScopeResolved     State = "SCOPE_RESOLVED"
	StateDataCollection    State = "DATA_COLLECTION"
	StateValidationPending State = "VALIDATION_PENDING"
	StateValidated         State = "VALIDATED"
	StateValidationFailed  State = "VALIDATION_FAILED"
	StateVerified          State = "VERIFIED"
	StateReportReady       State = "REPORT_READY"
	StateSubmitted         State = "SUBMITTED"
)

// IsValid checks if the state is a known value
func (s State) IsValid() bool {
	_, ok := capabilityTable[s]
	return ok
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateSubmitted
}

// Field names used in capability and visibility tables.
const (
	FieldCNCode          = "cnCode"
	FieldCountry         = "countryOfOrigin"
	FieldQuantity        = "quantity"
	FieldProductionRoute = "productionRoute"
	FieldEmissions       = "emissions"
	FieldReportingYear   = "reportingYear"
	FieldPrecursors      = "precursors"
	FieldCarbonPricePaid = "carbonPriceDuePaid"
	FieldDeMinimis       = "deMinimisThresholdExceeded"
	FieldBenchmark       = "benchmarkIntensity"
)

// Capabilities lists what the surrounding UI may let a user do in a state.
type Capabilities struct {
	CanEditCNCode          bool `json:"canEditCnCode"`
	CanEditCountry         bool `json:"canEditCountry"`
	CanEditQuantity        bool `json:"canEditQuantity"`
	CanEditProductionRoute bool `json:"canEditProductionRoute"`
	CanEditEmissions       bool `json:"canEditEmissions"`
	CanEditReportingYear   bool `json:"canEditReportingYear"`
	CanEditDeductions      bool `json:"canEditDeductions"`
	CanAddPrecursors       bool `json:"canAddPrecursors"`
	CanRemovePrecursors    bool `json:"canRemovePrecursors"`
	CanRecordValidation    bool `json:"canRecordValidation"`
	CanRecordVerification  bool `json:"canRecordVerification"`
	CanRequestChange       bool `json:"canRequestChange"`
	CanRecalculate         bool `json:"canRecalculate"`
	CanSubmit              bool `json:"canSubmit"`
	CanDelete              bool `json:"canDelete"`
}

// Visibility lists which panels the surrounding UI shows in a state.
type Visibility struct {
	ShowPreview          bool `json:"showPreview"`
	ShowCalculation      bool `json:"showCalculation"`
	ShowPrecursors       bool `json:"showPrecursors"`
	ShowValidationIssues bool `json:"showValidationIssues"`
	ShowVerification     bool `json:"showVerification"`
	ShowGates            bool `json:"showGates"`
	ShowSubmitAction     bool `json:"showSubmitAction"`
	ShowSubmissionInfo   bool `json:"showSubmissionInfo"`
}

var openEditing = Capabilities{
	CanEditCNCode: true, CanEditCountry: true, CanEditQuantity: true, CanEditProductionRoute: true,
	CanEditEmissions: true, CanEditReportingYear: true, CanEditDeductions: true,
	CanAddPrecursors: true, CanRemovePrecursors: true, CanRecalculate: true, CanDelete: true,
}

// capabilityTable is static per state. The calculation method is never
// editable in any state.
var capabilityTable = map[State]Capabilities{
	StateDraft:          openEditing,
	StateScopeResolved:  openEditing,
	StateDataCollection: openEditing,
	StateValidationPending: {
		CanRecordValidation: true, CanRecordVerification: true, CanRequestChange: true, CanRecalculate: true, CanDelete: true,
	},
	StateValidationFailed: {
		CanEditCountry: true, CanEditQuantity: true, CanEditProductionRoute: true, CanEditEmissions: true,
		CanEditDeductions: true, CanAddPrecursors: true, CanRemovePrecursors: true,
		CanRequestChange: true, CanRecalculate: true, CanDelete: true,
	},
	StateValidated: {
		CanRecordVerification: true, CanRequestChange: true, CanRecalculate: true,
	},
	StateVerified: {
		CanRecordVerification: true, CanRequestChange: true, CanRecalculate: true,
	},
	StateReportReady: {
		CanRequestChange: true, CanRecalculate: true, CanSubmit: true,
	},
	StateSubmitted: {},
}

var visibilityTable = map[State]Visibility{
	StateDraft:             {ShowPreview: true},
	StateScopeResolved:     {ShowPreview: true, ShowPrecursors: true},
	StateDataCollection:    {ShowPreview: true, ShowPrecursors: true},
	StateValidationPending: {ShowPreview: true, ShowPrecursors: true},
	StateValidationFailed:  {ShowPreview: true, ShowPrecursors: true, ShowValidationIssues: true},
	StateValidated:         {ShowCalculation: true, ShowPrecursors: true, ShowVerification: true, ShowGates: true},
	StateVerified:          {ShowCalculation: true, ShowPrecursors: true, ShowVerification: true, ShowGates: true},
	StateReportReady:       {ShowCalculation: true, ShowPrecursors: true, ShowVerification: true, ShowGates: true, ShowSubmitAction: true},
	StateSubmitted:         {ShowCalculation: true, ShowPrecursors: true, ShowVerification: true, ShowSubmissionInfo: true},
}

// CapabilitiesFor returns the static capability table of a state.
// Unknown states get no capabilities.
func CapabilitiesFor(s State) Capabilities {
	return capabilityTable[s]
}

// VisibilityFor returns the static visibility table of a state.
func VisibilityFor(s State) Visibility {
	return visibilityTable[s]
}

// EditableFields lists the entry fields a user may change in a state.
func EditableFields(s State) []string {
	c := CapabilitiesFor(s)
	fields := []string{}
	if c.CanEditCNCode {
		fields = append(fields, FieldCNCode)
	}
	if c.CanEditCountry {
		fields = append(fields, FieldCountry)
	}
	if c.CanEditQuantity {
		fields = append(fields, FieldQuantity)
	}
	if c.CanEditProductionRoute {
		fields = append(fields, FieldProductionRoute)
	}
	if c.CanEditEmissions {
		fields = append(fields, FieldEmissions)
	}
	if c.CanEditReportingYear {
		fields = append(fields, FieldReportingYear)
	}
	if c.CanEditDeductions {
		fields = append(fields, FieldCarbonPricePaid, FieldDeMinimis, FieldBenchmark)
	}
	if c.CanAddPrecursors || c.CanRemovePrecursors {
		fields = append(fields, FieldPrecursors)
	}
	return fields
}

// CanEditField reports whether a single field is editable in a state.
func CanEditField(s State, field string) bool {
	for _, f := range EditableFields(s) {
		if f == field {
			return true
		}
	}
	return false
}

// transitions lists the edges of the lifecycle graph. Backwards edges exist
// because the state is re-derived from data: clearing a field moves an entry
// back to an earlier state.
var transitions = map[State][]State{
	StateDraft:             {StateScopeResolved},
	StateScopeResolved:     {StateDraft, StateDataCollection},
	StateDataCollection:    {StateDraft, StateScopeResolved, StateValidationPending},
	StateValidationPending: {StateDataCollection, StateValidated, StateValidationFailed, StateVerified, StateReportReady},
	StateValidationFailed:  {StateValidationPending},
	StateValidated:         {StateValidationPending, StateVerified, StateReportReady},
	StateVerified:          {StateValidationPending, StateValidated, StateReportReady},
	StateReportReady:       {StateValidationPending, StateVerified, StateSubmitted},
	StateSubmitted:         {},
}

// CanTransition reports whether an entry may move from one state to another.
// Illegal requests are rejected with a reason; this never panics.
func CanTransition(from, to State) (bool, string) {
	if !from.IsValid() {
		return false, fmt.Sprintf("unknown state %q", from)
	}
	if !to.IsValid() {
		return false, fmt.Sprintf("unknown state %q", to)
	}
	if from == to {
		return true, ""
	}
	if from.IsTerminal() {
		return false, "entry has been submitted and is read-only"
	}
	for _, next := range transitions[from] {
		if next == to {
			return true, ""
		}
	}
	return false, fmt.Sprintf("cannot move from %s to %s", from, to)
}

// DetermineState derives the lifecycle state from the entry data alone. It is
// pure and total. Conditions are checked from the most advanced state down,
// so a submission marker overrides everything else.
func (c *Calculator) DetermineState(e Entry) State {
	if e.IsSubmitted() {
		return StateSubmitted
	}

	if e.ValidationStatus.IsPassed() {
		if c.EvaluateGates(e).CanSubmit {
			return StateReportReady
		}
		if c.isVerified(e) {
			return StateVerified
		}
		return StateValidated
	}

	if e.ValidationStatus.IsFailed() {
		return StateValidationFailed
	}

	if _, inScope := c.CategoryOf(e.CNCode); !inScope {
		return StateDraft
	}

	if c.dataComplete(e) {
		return StateValidationPending
	}

	if e.Quantity > 0 || e.CountryOfOrigin != "" || e.DirectEmissionsSpecific > 0 || len(e.Precursors) > 0 {
		return StateDataCollection
	}

	return StateScopeResolved
}

// isVerified reports whether a validated entry has passed verification. An
// actual-method entry needs a satisfactory verifier opinion; a default-value
// entry needs no verifier and counts as verified once it has been calculated.
func (c *Calculator) isVerified(e Entry) bool {
	if !gateVerification(e).Passed {
		return false
	}
	if e.Method().IsActual() {
		return true
	}
	return e.TotalEmbeddedEmissions != nil
}

// dataComplete reports whether an in-scope entry carries everything needed
// for validation.
func (c *Calculator) dataComplete(e Entry) bool {
	if e.Quantity <= 0 || e.CountryOfOrigin == "" {
		return false
	}
	if _, ok := c.PhaseIn(e.ReportingYear); !ok {
		return false
	}
	// In-scope default-value entries always resolve a default intensity.
	if e.Method().IsActual() && e.DirectEmissionsSpecific <= c.epsilon() {
		return false
	}
	if c.IsComplexGood(e.CNCode) && len(e.Precursors) == 0 {
		return false
	}
	return true
}

// StateDescription is the state plus the static tables that apply to it.
type StateDescription struct {
	State             State             `json:"state"`
	CalculationMethod CalculationMethod `json:"calculationMethod"`
	EditableFields    []string          `json:"editableFields"`
	Capabilities      Capabilities      `json:"capabilities"`
	VisibilityRules   Visibility        `json:"visibilityRules"`
}

// Describe derives the state of an entry and attaches its capability and
// visibility tables.
func (c *Calculator) Describe(e Entry) StateDescription {
	s := c.DetermineState(e)
	return StateDescription{
		State:             s,
		CalculationMethod: e.Method(),
		EditableFields:    EditableFields(s),
		Capabilities:      CapabilitiesFor(s),
		VisibilityRules:   VisibilityFor(s),
	}
}
