package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Run is a stored run header.
type Run struct {
	RunID     string
	MeasureID string
	PeriodEnd string
	CreatedAt string
}

// StoredVerdict is one persisted verdict row.
type StoredVerdict struct {
	PatientID string
	Verdict   string // canonical JSON
	Evidence  string
}

// ErrRunNotFound is returned when a run ID has no stored header.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the header for a run.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, measure_id, period_end, created_at
		FROM runs WHERE run_id = ?
	`, runID).Scan(&r.RunID, &r.MeasureID, &r.PeriodEnd, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", runID, err)
	}
	return r, nil
}

// LatestRun returns the most recently created run header.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, measure_id, period_end, created_at
		FROM runs ORDER BY created_at DESC, run_id DESC LIMIT 1
	`).Scan(&r.RunID, &r.MeasureID, &r.PeriodEnd, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("read latest run: %w", err)
	}
	return r, nil
}

// ReadVerdicts returns a run's verdict rows ordered by patient ID.
func (s *Store) ReadVerdicts(ctx context.Context, runID string) ([]StoredVerdict, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT patient_id, verdict, evidence
		FROM verdicts WHERE run_id = ?
		ORDER BY patient_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read verdicts %s: %w", runID, err)
	}
	defer rows.Close()

	var out []StoredVerdict
	for rows.Next() {
		var v StoredVerdict
		if err := rows.Scan(&v.PatientID, &v.Verdict, &v.Evidence); err != nil {
			return nil, fmt.Errorf("read verdicts %s: %w", runID, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read verdicts %s: %w", runID, err)
	}
	return out, nil
}
