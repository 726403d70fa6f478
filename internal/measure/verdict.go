package measure

import (
	"fmt"

	"github.com/clinbench/goldtruth/internal/canonical"
	"github.com/clinbench/goldtruth/internal/record"
)

// NoEvidence is the literal absence marker used wherever a verdict cites
// no evidentiary event. It is part of the scoring interface: model
// predictions are diffed against it verbatim.
const NoEvidence = "none"

// Evidence is the dated, coded event cited as justification for a
// numerator-met verdict.
type Evidence struct {
	Date        record.Date
	System      string
	Code        string
	Description string
}

// String serializes the evidence as date|system|code|description.
func (ev Evidence) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", ev.Date.ISO(), ev.System, ev.Code, ev.Description)
}

// Verdict is the immutable outcome of evaluating one patient against one
// measurement period. It is produced exactly once per (patient, period)
// pair and is the ground truth a model prediction is diffed against.
//
// Invariants, guaranteed by the pipeline:
//   - NumeratorMet implies DenominatorMet and not Excluded.
//   - Evidence is non-nil if and only if NumeratorMet.
//   - ExclusionReason is non-empty if and only if Excluded.
type Verdict struct {
	PatientID string
	MeasureID string
	PeriodEnd record.Date

	InitialPopulation bool
	DenominatorMet    bool
	Excluded          bool
	ExclusionReason   string
	NumeratorMet      bool
	Evidence          *Evidence
}

// EvidenceString returns the serialized evidence citation, or NoEvidence.
func (v Verdict) EvidenceString() string {
	if v.Evidence == nil {
		return NoEvidence
	}
	return v.Evidence.String()
}

// MarshalCanonical serializes the verdict as canonical JSON. Identical
// verdicts always produce identical bytes, which is what the golden
// tests, the store's replay check, and the scoring diff all compare.
func (v Verdict) MarshalCanonical() ([]byte, error) {
	m := map[string]any{
		"patient_id":         v.PatientID,
		"measure":            v.MeasureID,
		"period_end":         v.PeriodEnd.ISO(),
		"initial_population": v.InitialPopulation,
		"denominator_met":    v.DenominatorMet,
		"excluded":           v.Excluded,
		"numerator_met":      v.NumeratorMet,
		"evidence":           v.EvidenceString(),
	}
	if v.ExclusionReason != "" {
		m["exclusion_reason"] = v.ExclusionReason
	}
	return canonical.Marshal(m)
}
