package store

import (
	"context"
	"fmt"
	"sort"
)

// Divergence is one patient whose recomputed verdict does not
// byte-match the stored one. Any divergence means either the inputs
// changed or determinism broke; both invalidate the run as ground truth.
type Divergence struct {
	PatientID  string
	Stored     string
	Recomputed string
}

// Replay compares a run's stored canonical verdicts against recomputed
// ones, keyed by patient ID. A patient present on only one side is a
// divergence with the missing side empty. Returns divergences in stored
// row order (patient ID order).
func (s *Store) Replay(ctx context.Context, runID string, recomputed map[string][]byte) ([]Divergence, error) {
	stored, err := s.ReadVerdicts(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	var diffs []Divergence
	seen := make(map[string]bool, len(stored))
	for _, row := range stored {
		seen[row.PatientID] = true
		got, ok := recomputed[row.PatientID]
		if !ok {
			diffs = append(diffs, Divergence{PatientID: row.PatientID, Stored: row.Verdict})
			continue
		}
		if string(got) != row.Verdict {
			diffs = append(diffs, Divergence{PatientID: row.PatientID, Stored: row.Verdict, Recomputed: string(got)})
		}
	}
	var extra []Divergence
	for pid, got := range recomputed {
		if !seen[pid] {
			extra = append(extra, Divergence{PatientID: pid, Recomputed: string(got)})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].PatientID < extra[j].PatientID })
	return append(diffs, extra...), nil
}
