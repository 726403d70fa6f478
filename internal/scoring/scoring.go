// Package scoring defines the interface boundary between the gold-truth
// engine and the model-evaluation layer: the structured prediction a
// model must return and the diff of that prediction against a verdict.
//
// Statistics (bootstrap intervals, paired significance tests) live in
// the external analysis layer, not here.
package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clinbench/goldtruth/internal/measure"
	"github.com/clinbench/goldtruth/internal/record"
)

// Prediction is a model's structured claim about one patient.
// AuditEvidence is expected to be the cited event reference, or an
// absence marker when the model claims no qualifying event exists.
type Prediction struct {
	DenominatorMet bool   `json:"denominator_met"`
	NumeratorMet   bool   `json:"numerator_met"`
	AuditEvidence  string `json:"audit_evidence"`
}

// ParsePrediction decodes a model response into a Prediction. Markdown
// code fences around the JSON body are tolerated; anything else
// unparsable is an error (the caller records it as a failed response,
// it is never coerced into a default prediction).
func ParsePrediction(raw []byte) (Prediction, error) {
	text := strings.TrimSpace(string(raw))
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var p Prediction
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return Prediction{}, fmt.Errorf("unparsable prediction: %w", err)
	}
	return p, nil
}

// Outcome classifies a prediction against the gold verdict.
type Outcome string

const (
	// OutcomeExactMatch: all claimed fields match, and the evidence
	// claim is auditable.
	OutcomeExactMatch Outcome = "EXACT_MATCH"

	// OutcomeFalsePositive: the model claimed compliance the gold truth
	// denies.
	OutcomeFalsePositive Outcome = "FALSE_POSITIVE"

	// OutcomeFalseNegative: the model denied compliance the gold truth
	// asserts.
	OutcomeFalseNegative Outcome = "FALSE_NEGATIVE"

	// OutcomeDenominatorMismatch: the model got denominator membership
	// wrong, so the compliance call is not even well-posed.
	OutcomeDenominatorMismatch Outcome = "DENOMINATOR_MISMATCH"

	// OutcomeHallucination: the boolean calls match but the cited
	// evidence does not agree with the gold citation.
	OutcomeHallucination Outcome = "EVIDENCE_HALLUCINATION"
)

// absenceMarkers are the model-side spellings accepted as "no evidence".
var absenceMarkers = map[string]bool{
	"": true, "none": true, "null": true, "n/a": true,
}

func claimsNoEvidence(s string) bool {
	return absenceMarkers[strings.ToLower(strings.TrimSpace(s))]
}

// Auditable reports whether the prediction's evidence claim agrees with
// the verdict: absence against absence, or a citation that names the
// gold event's date or full citation string against a numerator-met
// verdict. A date-only citation is accepted because models commonly
// cite the date without the code triple.
func Auditable(v measure.Verdict, evidence string) bool {
	if v.Evidence == nil {
		return claimsNoEvidence(evidence)
	}
	if claimsNoEvidence(evidence) {
		return false
	}
	claim := strings.TrimSpace(evidence)
	return claim == v.Evidence.String() || strings.Contains(claim, v.Evidence.Date.ISO())
}

// Classify diffs one prediction against one verdict.
func Classify(v measure.Verdict, p Prediction) Outcome {
	if p.DenominatorMet != v.DenominatorMet {
		return OutcomeDenominatorMismatch
	}
	if p.NumeratorMet && !v.NumeratorMet {
		return OutcomeFalsePositive
	}
	if !p.NumeratorMet && v.NumeratorMet {
		return OutcomeFalseNegative
	}
	if !Auditable(v, p.AuditEvidence) {
		return OutcomeHallucination
	}
	return OutcomeExactMatch
}

// HallucinationKind refines a non-auditable evidence claim.
type HallucinationKind string

const (
	HallucinationNoEvidenceCited  HallucinationKind = "NO_EVIDENCE_CITED"
	HallucinationFutureDate       HallucinationKind = "FUTURE_DATE"
	HallucinationOutsideWindow    HallucinationKind = "OUTSIDE_WINDOW"
	HallucinationWrongConclusion  HallucinationKind = "WRONG_CONCLUSION"
	HallucinationFabricatedDetail HallucinationKind = "FABRICATED_DETAILS"
)

// ClassifyHallucination refines a non-auditable claim using the
// numerator lookback window. A parsable cited date is either in the
// future, outside the window (the dominant observed error mode: real
// events reported in the wrong time frame), or inside it with the wrong
// conclusion drawn. An unparsable citation is fabricated detail.
func ClassifyHallucination(w measure.Window, evidence string) HallucinationKind {
	claim := strings.TrimSpace(evidence)
	if claimsNoEvidence(claim) {
		return HallucinationNoEvidenceCited
	}

	d, ok := extractDate(claim)
	if !ok {
		return HallucinationFabricatedDetail
	}
	switch {
	case d.After(w.End):
		return HallucinationFutureDate
	case d.Before(w.Start):
		return HallucinationOutsideWindow
	default:
		return HallucinationWrongConclusion
	}
}

// extractDate pulls a leading YYYY-MM-DD from a citation, which covers
// both the engine's date|system|code|description format and bare dates.
func extractDate(s string) (record.Date, bool) {
	if len(s) < 10 {
		return record.Date{}, false
	}
	d, err := record.ParseDate(s[:10])
	if err != nil {
		return record.Date{}, false
	}
	return d, true
}
