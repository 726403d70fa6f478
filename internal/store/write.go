package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clinbench/goldtruth/internal/cohort"
	"github.com/clinbench/goldtruth/internal/measure"
)

// WriteRun records a run header and all of its verdicts and skips in one
// transaction. Verdict rows are serialized with the engine's canonical
// marshaller; a given (run, patient) is written at most once, so
// rewriting the same result is idempotent.
func (s *Store) WriteRun(ctx context.Context, measureID string, periodEnd string, res cohort.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, measure_id, period_end)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`, res.RunID, measureID, periodEnd)
	if err != nil {
		return fmt.Errorf("write run %s: %w", res.RunID, err)
	}

	for _, v := range res.Verdicts {
		if err := writeVerdict(ctx, tx, res.RunID, v); err != nil {
			return err
		}
	}
	for _, sk := range res.Skips {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO skips (run_id, patient_id, reason)
			VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`, res.RunID, sk.PatientID, sk.Reason)
		if err != nil {
			return fmt.Errorf("write skip %s/%s: %w", res.RunID, sk.PatientID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: %w", res.RunID, err)
	}
	return nil
}

func writeVerdict(ctx context.Context, tx execer, runID string, v measure.Verdict) error {
	verdictJSON, err := v.MarshalCanonical()
	if err != nil {
		return fmt.Errorf("write verdict %s/%s: %w", runID, v.PatientID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO verdicts (run_id, patient_id, verdict, evidence)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, runID, v.PatientID, string(verdictJSON), v.EvidenceString())
	if err != nil {
		return fmt.Errorf("write verdict %s/%s: %w", runID, v.PatientID, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
