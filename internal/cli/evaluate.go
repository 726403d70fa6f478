package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/clinbench/goldtruth/internal/cohort"
	"github.com/clinbench/goldtruth/internal/measure"
)

// NewEvaluateCommand creates the evaluate command: compute and print the
// verdict for a single patient in the cohort.
func NewEvaluateCommand(opts *RootOptions) *cobra.Command {
	var flags engineFlags
	var patientID string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one patient and print the verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			eval, period, err := flags.setup()
			if err != nil {
				return err
			}
			inputs, err := flags.loadCohort()
			if err != nil {
				return err
			}

			var input *cohort.PatientInput
			for i := range inputs {
				if inputs[i].ID == patientID {
					input = &inputs[i]
					break
				}
			}
			if input == nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("patient %q not found in cohort", patientID))
			}

			patient, err := cohort.Build(*input)
			if err != nil {
				return WrapExitError(ExitFailure, "malformed patient record", err)
			}

			verdict := eval.Evaluate(patient, period)
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			if opts.Format == "json" {
				verdictJSON, err := verdict.MarshalCanonical()
				if err != nil {
					return WrapExitError(ExitCommandError, "serializing verdict", err)
				}
				return out.PrintRaw(verdictJSON)
			}

			return out.Print(nil, func(w io.Writer) {
				printVerdict(w, verdict, eval.Window(period))
			})
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&patientID, "patient", "", "patient ID to evaluate")
	cmd.MarkFlagRequired("patient")
	return cmd
}

func printVerdict(w io.Writer, v measure.Verdict, window measure.Window) {
	fmt.Fprintf(w, "patient:            %s\n", v.PatientID)
	fmt.Fprintf(w, "measure:            %s\n", v.MeasureID)
	fmt.Fprintf(w, "period end:         %s\n", v.PeriodEnd.ISO())
	fmt.Fprintf(w, "lookback window:    %s\n", window)
	fmt.Fprintf(w, "initial population: %v\n", v.InitialPopulation)
	fmt.Fprintf(w, "denominator met:    %v\n", v.DenominatorMet)
	fmt.Fprintf(w, "excluded:           %v\n", v.Excluded)
	if v.Excluded {
		fmt.Fprintf(w, "exclusion reason:   %s\n", v.ExclusionReason)
	}
	fmt.Fprintf(w, "numerator met:      %v\n", v.NumeratorMet)
	fmt.Fprintf(w, "evidence:           %s\n", v.EvidenceString())
}
