package harness

import (
	"fmt"

	"github.com/clinbench/goldtruth/internal/cohort"
	"github.com/clinbench/goldtruth/internal/measure"
	"github.com/clinbench/goldtruth/internal/terminology"
)

// RunResult is the outcome of executing one scenario.
type RunResult struct {
	Verdict measure.Verdict

	// Failures lists expectation mismatches, empty on success.
	Failures []string
}

// Run builds the scenario's patient through the production construction
// boundary, evaluates it, and checks the expectation clause. A scenario
// that cannot even be constructed (malformed fixture, bad period)
// returns an error; expectation mismatches are reported in Failures.
func Run(s *Scenario, reg *terminology.Registry) (*RunResult, error) {
	eval, err := measure.NewEvaluator(reg, measure.BreastCancerScreening())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	period, err := measure.ParsePeriodEnd(s.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	patient, err := cohort.Build(s.patientInput())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	verdict := eval.Evaluate(patient, period)
	res := &RunResult{Verdict: verdict}
	res.check(s.Expect)
	return res, nil
}

func (r *RunResult) check(expect ExpectClause) {
	r.checkBool("initial_population", expect.InitialPopulation, r.Verdict.InitialPopulation)
	r.checkBool("denominator_met", expect.DenominatorMet, r.Verdict.DenominatorMet)
	r.checkBool("excluded", expect.Excluded, r.Verdict.Excluded)
	r.checkBool("numerator_met", expect.NumeratorMet, r.Verdict.NumeratorMet)
	if expect.Evidence != nil && *expect.Evidence != r.Verdict.EvidenceString() {
		r.Failures = append(r.Failures,
			fmt.Sprintf("evidence: expected %q, got %q", *expect.Evidence, r.Verdict.EvidenceString()))
	}
}

func (r *RunResult) checkBool(field string, expected *bool, actual bool) {
	if expected != nil && *expected != actual {
		r.Failures = append(r.Failures,
			fmt.Sprintf("%s: expected %v, got %v", field, *expected, actual))
	}
}
