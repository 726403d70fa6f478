package measure

import (
	"fmt"

	"github.com/clinbench/goldtruth/internal/record"
	"github.com/clinbench/goldtruth/internal/terminology"
)

// Evaluator evaluates one measure definition against patient records.
//
// All terminology categories are resolved once at construction, so an
// unregistered category fails at startup and the per-patient path
// performs set lookups only. An Evaluator is immutable after
// construction and safe for concurrent use.
type Evaluator struct {
	def Definition

	numerator *terminology.CodeSet
	bilateral *terminology.CodeSet
	left      *terminology.CodeSet
	right     *terminology.CodeSet
}

// NewEvaluator resolves the definition's terminology categories against
// the registry. Returns the registry's UnknownCategoryError (wrapped) if
// any category is missing.
func NewEvaluator(reg *terminology.Registry, def Definition) (*Evaluator, error) {
	e := &Evaluator{def: def}

	for _, bind := range []struct {
		category string
		target   **terminology.CodeSet
	}{
		{def.NumeratorCategory, &e.numerator},
		{def.BilateralCategory, &e.bilateral},
		{def.LeftCategory, &e.left},
		{def.RightCategory, &e.right},
	} {
		set, err := reg.Codes(bind.category)
		if err != nil {
			return nil, fmt.Errorf("measure %s: %w", def.ID, err)
		}
		*bind.target = set
	}

	return e, nil
}

// Definition returns the measure definition this evaluator implements.
func (e *Evaluator) Definition() Definition {
	return e.def
}

// Window returns the numerator lookback window for the given period.
func (e *Evaluator) Window(period Period) Window {
	return Lookback(period.End, e.def.LookbackMonths)
}

// Evaluate runs the short-circuited pipeline and assembles the verdict:
//
//  1. Initial population (demographics at period end). Fail: everything
//     downstream stays false, the exclusion and numerator stages are
//     never consulted.
//  2. Exclusion scan over the full lifetime history. Hit: denominator
//     removed, never compliant, no evidence.
//  3. Denominator membership, then the windowed numerator scan; a hit
//     cites the most recent qualifying event as evidence.
//
// Evaluate is a pure function and is total over well-formed inputs: it
// never fails for a patient that passed record construction.
func (e *Evaluator) Evaluate(p *record.Patient, period Period) Verdict {
	v := Verdict{
		PatientID: p.ID,
		MeasureID: e.def.ID,
		PeriodEnd: period.End,
	}

	if !e.InInitialPopulation(p, period) {
		return v
	}
	v.InitialPopulation = true

	if excluded, reason := e.Excluded(p); excluded {
		v.Excluded = true
		v.ExclusionReason = reason
		return v
	}

	v.DenominatorMet = e.InDenominator(p, period)
	if !v.DenominatorMet {
		return v
	}

	if ev, ok := e.NumeratorEvent(p, e.Window(period)); ok {
		v.NumeratorMet = true
		v.Evidence = &Evidence{
			Date:        ev.Date,
			System:      ev.System,
			Code:        ev.Code,
			Description: ev.Description,
		}
	}

	return v
}
