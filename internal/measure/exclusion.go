package measure

import (
	"github.com/clinbench/goldtruth/internal/record"
	"github.com/clinbench/goldtruth/internal/terminology"
)

// Exclusion reasons cited in verdicts.
const (
	ReasonBilateralMastectomy = "bilateral mastectomy"
	ReasonBothSidesAbsent     = "unilateral mastectomy or breast absence, both sides"
)

// Excluded scans the patient's FULL lifetime history for exclusion
// events, with no temporal restriction. An exclusion is an anatomical
// fact, not a recency-bound service: once recorded, it removes the
// patient from the denominator for this measurement period and every
// future one.
//
// A bilateral event alone excludes. A left-side event combined with a
// right-side event, on any dates, also excludes. One side alone does
// not: the remaining breast is still screened.
func (e *Evaluator) Excluded(p *record.Patient) (excluded bool, reason string) {
	if hasAny(p, e.bilateral) {
		return true, ReasonBilateralMastectomy
	}
	if hasAny(p, e.left) && hasAny(p, e.right) {
		return true, ReasonBothSidesAbsent
	}
	return false, ""
}

// hasAny reports whether the patient has at least one event in the set,
// pulling no more than one element from the lazy sequence.
func hasAny(p *record.Patient, set *terminology.CodeSet) bool {
	for range p.EventsMatching(set) {
		return true
	}
	return false
}
