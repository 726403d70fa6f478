package cohort

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinbench/goldtruth/internal/measure"
	"github.com/clinbench/goldtruth/internal/terminology"
)

func testRunner(t *testing.T, opts ...RunnerOption) *Runner {
	t.Helper()
	reg, err := terminology.NewRegistry(
		terminology.NewSet("mammography", "bilateral mammography", terminology.RoleNumerator,
			terminology.Code{System: "CPT", Code: "77067"},
		),
		terminology.NewSet("bilateral-mastectomy", "bilateral mastectomy", terminology.RoleExclusion,
			terminology.Code{System: "ICD-10-CM", Code: "Z90.13"},
		),
		terminology.NewSet("unilateral-mastectomy-left", "left mastectomy", terminology.RoleExclusion,
			terminology.Code{System: "ICD-10-CM", Code: "Z90.12"},
		),
		terminology.NewSet("unilateral-mastectomy-right", "right mastectomy", terminology.RoleExclusion,
			terminology.Code{System: "ICD-10-CM", Code: "Z90.11"},
		),
	)
	require.NoError(t, err)

	eval, err := measure.NewEvaluator(reg, measure.BreastCancerScreening())
	require.NoError(t, err)
	period, err := measure.ParsePeriodEnd("2025-12-31")
	require.NoError(t, err)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]RunnerOption{
		WithRunIDGenerator(FixedRunID("run-test")),
		WithLogger(quiet),
	}, opts...)
	return NewRunner(eval, period, opts...)
}

func testCohort() []PatientInput {
	return []PatientInput{
		{ID: "pat-c", BirthDate: "1958-05-20", Sex: "F", Events: []EventInput{
			{Date: "2010-03-03", System: "ICD-10-CM", Code: "Z90.13", Description: "Acquired absence of both breasts"},
		}},
		{ID: "pat-a", BirthDate: "1962-03-10", Sex: "F", Events: []EventInput{
			{Date: "2024-10-20", System: "CPT", Code: "77067", Description: "Screening mammography"},
		}},
		{ID: "pat-bad", BirthDate: "not-a-date", Sex: "F"},
		{ID: "pat-b", BirthDate: "1960-07-04", Sex: "F"},
	}
}

func TestRunner_Run(t *testing.T) {
	r := testRunner(t)

	res, err := r.Run(context.Background(), testCohort())
	require.NoError(t, err)

	assert.Equal(t, "run-test", res.RunID)

	require.Len(t, res.Verdicts, 3)
	assert.Equal(t, "pat-a", res.Verdicts[0].PatientID)
	assert.Equal(t, "pat-b", res.Verdicts[1].PatientID)
	assert.Equal(t, "pat-c", res.Verdicts[2].PatientID)

	assert.True(t, res.Verdicts[0].NumeratorMet)
	assert.False(t, res.Verdicts[1].NumeratorMet)
	assert.True(t, res.Verdicts[1].DenominatorMet)
	assert.True(t, res.Verdicts[2].Excluded)

	require.Len(t, res.Skips, 1)
	assert.Equal(t, "pat-bad", res.Skips[0].PatientID)
	assert.Contains(t, res.Skips[0].Reason, "date_of_birth")
}

func TestRunner_EmptyCohort(t *testing.T) {
	r := testRunner(t)

	res, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "run-test", res.RunID)
	assert.Empty(t, res.Verdicts)
	assert.Empty(t, res.Skips)
}

// Output order and bytes are identical regardless of worker count.
func TestRunner_DeterministicAcrossWorkerCounts(t *testing.T) {
	cohort := testCohort()

	baseline, err := testRunner(t, WithWorkers(1)).Run(context.Background(), cohort)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 16} {
		res, err := testRunner(t, WithWorkers(workers)).Run(context.Background(), cohort)
		require.NoError(t, err)
		assert.Equal(t, baseline.Verdicts, res.Verdicts, "workers=%d", workers)
		assert.Equal(t, baseline.Skips, res.Skips, "workers=%d", workers)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testRunner(t).Run(ctx, testCohort())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.NewRunID(), g.NewRunID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
