package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/clinbench/goldtruth/internal/cohort"
	"github.com/clinbench/goldtruth/internal/measure"
	"github.com/clinbench/goldtruth/internal/store"
	"github.com/clinbench/goldtruth/internal/terminology"
)

// NewReplayCommand creates the replay command: re-evaluate a stored
// run's cohort and byte-compare the recomputed canonical verdicts
// against the persisted rows. Divergence means the inputs changed or
// determinism broke; either way the stored run is no longer trustworthy
// ground truth, and the command exits 1.
func NewReplayCommand(opts *RootOptions) *cobra.Command {
	var terminologyDir, patientsPath, eventsPath, dbPath, runID string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Verify a stored run is reproducible",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(dbPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening verdict store", err)
			}
			defer db.Close()

			run, err := resolveRun(cmd, db, runID)
			if err != nil {
				return err
			}

			reg, err := terminology.Load(terminologyDir)
			if err != nil {
				return WrapExitError(ExitFailure, "loading terminology", err)
			}
			eval, err := measure.NewEvaluator(reg, measure.BreastCancerScreening())
			if err != nil {
				return WrapExitError(ExitFailure, "resolving measure terminology", err)
			}
			if got := eval.Definition().ID; got != run.MeasureID {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("run %s was produced by measure %s, not %s", run.RunID, run.MeasureID, got))
			}
			period, err := measure.ParsePeriodEnd(run.PeriodEnd)
			if err != nil {
				return WrapExitError(ExitCommandError, "stored period end", err)
			}

			inputs, err := cohort.LoadPatients(patientsPath, eventsPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading cohort", err)
			}

			runner := cohort.NewRunner(eval, period, cohort.WithRunIDGenerator(cohort.FixedRunID("replay")))
			res, err := runner.Run(cmd.Context(), inputs)
			if err != nil {
				return WrapExitError(ExitCommandError, "cohort run", err)
			}

			recomputed := make(map[string][]byte, len(res.Verdicts))
			for _, v := range res.Verdicts {
				b, err := v.MarshalCanonical()
				if err != nil {
					return WrapExitError(ExitCommandError, "serializing verdict", err)
				}
				recomputed[v.PatientID] = b
			}

			diffs, err := db.Replay(cmd.Context(), run.RunID, recomputed)
			if err != nil {
				return WrapExitError(ExitCommandError, "replay", err)
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			printErr := out.Print(map[string]any{
				"run_id":      run.RunID,
				"verdicts":    len(recomputed),
				"divergences": diffs,
			}, func(w io.Writer) {
				if len(diffs) == 0 {
					fmt.Fprintf(w, "run %s: deterministic, %d verdicts match\n", run.RunID, len(recomputed))
					return
				}
				fmt.Fprintf(w, "run %s: %d divergences\n", run.RunID, len(diffs))
				for _, d := range diffs {
					fmt.Fprintf(w, "  patient %s:\n    stored:     %s\n    recomputed: %s\n",
						d.PatientID, d.Stored, d.Recomputed)
				}
			})
			if printErr != nil {
				return printErr
			}
			if len(diffs) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d verdicts diverged", len(diffs)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&terminologyDir, "terminology", "valuesets", "directory of CUE value-set declarations")
	cmd.Flags().StringVar(&patientsPath, "patients", "", "patients CSV file")
	cmd.Flags().StringVar(&eventsPath, "events", "", "events CSV file")
	cmd.Flags().StringVar(&dbPath, "db", "goldtruth.db", "verdict database path")
	cmd.Flags().StringVar(&runID, "run-id", "", "run to verify (default: latest)")
	cmd.MarkFlagRequired("patients")
	cmd.MarkFlagRequired("events")
	return cmd
}

func resolveRun(cmd *cobra.Command, db *store.Store, runID string) (store.Run, error) {
	if runID != "" {
		run, err := db.ReadRun(cmd.Context(), runID)
		if errors.Is(err, store.ErrRunNotFound) {
			return store.Run{}, NewExitError(ExitCommandError, fmt.Sprintf("run %q not found", runID))
		}
		if err != nil {
			return store.Run{}, WrapExitError(ExitCommandError, "reading run", err)
		}
		return run, nil
	}
	run, err := db.LatestRun(cmd.Context())
	if errors.Is(err, store.ErrRunNotFound) {
		return store.Run{}, NewExitError(ExitCommandError, "no runs in store")
	}
	if err != nil {
		return store.Run{}, WrapExitError(ExitCommandError, "reading latest run", err)
	}
	return run, nil
}
