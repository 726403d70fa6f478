package cli

import (
	"github.com/spf13/cobra"

	"github.com/clinbench/goldtruth/internal/cohort"
	"github.com/clinbench/goldtruth/internal/measure"
	"github.com/clinbench/goldtruth/internal/terminology"
)

// DefaultPeriodEnd is the measurement-year end date used when
// --period-end is not given.
const DefaultPeriodEnd = "2025-12-31"

// engineFlags are the setup inputs shared by every evaluating command.
type engineFlags struct {
	Terminology string
	Patients    string
	Events      string
	PeriodEnd   string
}

func (f *engineFlags) register(cmd *cobra.Command, withCohort bool) {
	cmd.Flags().StringVar(&f.Terminology, "terminology", "valuesets", "directory of CUE value-set declarations")
	cmd.Flags().StringVar(&f.PeriodEnd, "period-end", DefaultPeriodEnd, "measurement period end date (YYYY-MM-DD)")
	if withCohort {
		cmd.Flags().StringVar(&f.Patients, "patients", "", "patients CSV file")
		cmd.Flags().StringVar(&f.Events, "events", "", "events CSV file")
		cmd.MarkFlagRequired("patients")
		cmd.MarkFlagRequired("events")
	}
}

// setup loads the registry and builds the evaluator and period. All
// failures here are configuration errors: exit code 1 for invalid
// terminology, 2 for everything the operator typed wrong.
func (f *engineFlags) setup() (*measure.Evaluator, measure.Period, error) {
	reg, err := terminology.Load(f.Terminology)
	if err != nil {
		return nil, measure.Period{}, WrapExitError(ExitFailure, "loading terminology", err)
	}

	eval, err := measure.NewEvaluator(reg, measure.BreastCancerScreening())
	if err != nil {
		return nil, measure.Period{}, WrapExitError(ExitFailure, "resolving measure terminology", err)
	}

	period, err := measure.ParsePeriodEnd(f.PeriodEnd)
	if err != nil {
		return nil, measure.Period{}, WrapExitError(ExitCommandError, "parsing period end", err)
	}

	return eval, period, nil
}

func (f *engineFlags) loadCohort() ([]cohort.PatientInput, error) {
	patients, err := cohort.LoadPatients(f.Patients, f.Events)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading cohort", err)
	}
	return patients, nil
}
