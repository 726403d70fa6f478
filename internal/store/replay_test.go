package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recomputedFrom(t *testing.T, s *Store, runID string) map[string][]byte {
	t.Helper()
	stored, err := s.ReadVerdicts(context.Background(), runID)
	require.NoError(t, err)
	out := make(map[string][]byte, len(stored))
	for _, v := range stored {
		out[v.PatientID] = []byte(v.Verdict)
	}
	return out
}

func TestReplay_Clean(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, "CMS125", "2025-12-31", testResult("run-1")))

	diffs, err := s.Replay(ctx, "run-1", recomputedFrom(t, s, "run-1"))
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestReplay_DetectsChangedVerdict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, "CMS125", "2025-12-31", testResult("run-1")))

	recomputed := recomputedFrom(t, s, "run-1")
	recomputed["pat-b"] = []byte(`{"numerator_met":true}`)

	diffs, err := s.Replay(ctx, "run-1", recomputed)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "pat-b", diffs[0].PatientID)
	assert.NotEmpty(t, diffs[0].Stored)
	assert.Equal(t, `{"numerator_met":true}`, diffs[0].Recomputed)
}

// A byte-level difference that is semantically equal JSON still diverges:
// the comparison is over canonical bytes, not parsed values.
func TestReplay_ByteLevelStrictness(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, "CMS125", "2025-12-31", testResult("run-1")))

	recomputed := recomputedFrom(t, s, "run-1")
	recomputed["pat-a"] = append([]byte(" "), recomputed["pat-a"]...)

	diffs, err := s.Replay(ctx, "run-1", recomputed)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "pat-a", diffs[0].PatientID)
}

func TestReplay_MissingAndExtraPatients(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, "CMS125", "2025-12-31", testResult("run-1")))

	recomputed := recomputedFrom(t, s, "run-1")
	delete(recomputed, "pat-a")
	recomputed["pat-z"] = []byte(`{}`)
	recomputed["pat-y"] = []byte(`{}`)

	diffs, err := s.Replay(ctx, "run-1", recomputed)
	require.NoError(t, err)
	require.Len(t, diffs, 3)

	assert.Equal(t, "pat-a", diffs[0].PatientID)
	assert.Empty(t, diffs[0].Recomputed)

	// Extras come after stored-side diffs, sorted by patient ID.
	assert.Equal(t, "pat-y", diffs[1].PatientID)
	assert.Equal(t, "pat-z", diffs[2].PatientID)
	assert.Empty(t, diffs[1].Stored)
}

// Tampering with a stored row is caught on the next replay.
func TestReplay_DetectsTamperedRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, "CMS125", "2025-12-31", testResult("run-1")))

	recomputed := recomputedFrom(t, s, "run-1")

	_, err := s.DB().ExecContext(ctx, `
		UPDATE verdicts SET verdict = '{"forged":true}'
		WHERE run_id = 'run-1' AND patient_id = 'pat-a'
	`)
	require.NoError(t, err)

	diffs, err := s.Replay(ctx, "run-1", recomputed)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "pat-a", diffs[0].PatientID)
	assert.Equal(t, `{"forged":true}`, diffs[0].Stored)
}
