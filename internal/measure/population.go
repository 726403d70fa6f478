package measure

import "github.com/clinbench/goldtruth/internal/record"

// InInitialPopulation reports demographic eligibility as of the period
// end date: matching sex and age within [MinAge, MaxAge] inclusive. Age
// is birthday-inclusive, so a patient turning MinAge exactly on the
// period end date is in; one day younger is out.
//
// Exclusions are not evaluated here; population and exclusion are
// separate pipeline stages so each pass/fail is independently
// attributable in the verdict.
func (e *Evaluator) InInitialPopulation(p *record.Patient, period Period) bool {
	if p.Sex != e.def.Sex {
		return false
	}
	age := p.AgeAt(period.End)
	return age >= e.def.MinAge && age <= e.def.MaxAge
}

// InDenominator reports denominator membership before exclusions:
// initial population plus continuous enrollment over the measurement
// period.
func (e *Evaluator) InDenominator(p *record.Patient, period Period) bool {
	return e.InInitialPopulation(p, period) && e.continuouslyEnrolled(p, period)
}

// continuouslyEnrolled is treated as always satisfied: the synthetic
// cohort carries no enrollment spans. Kept as an explicit stage so
// enrollment data has a single place to land if it ever arrives.
func (e *Evaluator) continuouslyEnrolled(_ *record.Patient, _ Period) bool {
	return true
}
