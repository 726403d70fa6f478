package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/clinbench/goldtruth/internal/cohort"
	"github.com/clinbench/goldtruth/internal/store"
)

// NewRunCommand creates the run command: evaluate the full cohort in
// parallel, persist the verdicts, and report a summary including every
// skipped record and its reason.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	var flags engineFlags
	var dbPath string
	var workers int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a cohort and persist the verdicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			eval, period, err := flags.setup()
			if err != nil {
				return err
			}
			inputs, err := flags.loadCohort()
			if err != nil {
				return err
			}

			runner := cohort.NewRunner(eval, period, cohort.WithWorkers(workers))
			res, err := runner.Run(cmd.Context(), inputs)
			if err != nil {
				return WrapExitError(ExitCommandError, "cohort run", err)
			}

			db, err := store.Open(dbPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening verdict store", err)
			}
			defer db.Close()

			if err := db.WriteRun(cmd.Context(), eval.Definition().ID, period.End.ISO(), res); err != nil {
				return WrapExitError(ExitCommandError, "persisting run", err)
			}

			numerator := 0
			for _, v := range res.Verdicts {
				if v.NumeratorMet {
					numerator++
				}
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			summary := map[string]any{
				"run_id":        res.RunID,
				"measure":       eval.Definition().ID,
				"period_end":    period.End.ISO(),
				"patients":      len(inputs),
				"verdicts":      len(res.Verdicts),
				"numerator_met": numerator,
				"skips":         res.Skips,
			}
			return out.Print(summary, func(w io.Writer) {
				fmt.Fprintf(w, "run %s: %d verdicts (%d numerator met), %d skipped\n",
					res.RunID, len(res.Verdicts), numerator, len(res.Skips))
				for _, sk := range res.Skips {
					fmt.Fprintf(w, "  skipped %s: %s\n", sk.PatientID, sk.Reason)
				}
			})
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&dbPath, "db", "goldtruth.db", "verdict database path")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (default GOMAXPROCS)")
	return cmd
}
