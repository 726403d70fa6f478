package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinbench/goldtruth/internal/cohort"
	"github.com/clinbench/goldtruth/internal/scoring"
)

// NewScoreCommand creates the score command: recompute the gold verdict
// for one patient and diff a model's structured prediction against it.
func NewScoreCommand(opts *RootOptions) *cobra.Command {
	var flags engineFlags
	var patientID, predictionPath string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Diff a model prediction against the gold verdict",
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

			raw, err := os.ReadFile(predictionPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "reading prediction", err)
			}
			prediction, err := scoring.ParsePrediction(raw)
			if err != nil {
				return WrapExitError(ExitFailure, "parsing prediction", err)
			}

			verdict := eval.Evaluate(patient, period)
			outcome := scoring.Classify(verdict, prediction)

			result := map[string]any{
				"patient_id":    verdict.PatientID,
				"outcome":       string(outcome),
				"gold_evidence": verdict.EvidenceString(),
				"llm_evidence":  prediction.AuditEvidence,
			}
			if outcome == scoring.OutcomeHallucination {
				kind := scoring.ClassifyHallucination(eval.Window(period), prediction.AuditEvidence)
				result["hallucination_kind"] = string(kind)
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return out.Print(result, func(w io.Writer) {
				fmt.Fprintf(w, "patient:  %s\n", verdict.PatientID)
				fmt.Fprintf(w, "outcome:  %s\n", outcome)
				if kind, ok := result["hallucination_kind"]; ok {
					fmt.Fprintf(w, "kind:     %s\n", kind)
				}
				fmt.Fprintf(w, "gold:     %s\n", verdict.EvidenceString())
				fmt.Fprintf(w, "claimed:  %s\n", prediction.AuditEvidence)
			})
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&patientID, "patient", "", "patient ID to score")
	cmd.Flags().StringVar(&predictionPath, "prediction", "", "model prediction JSON file")
	cmd.MarkFlagRequired("patient")
	cmd.MarkFlagRequired("prediction")
	return cmd
}
