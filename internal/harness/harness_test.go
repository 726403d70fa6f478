package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinbench/goldtruth/internal/terminology"
)

func loadRegistry(t *testing.T) *terminology.Registry {
	t.Helper()
	reg, err := terminology.Load(filepath.Join("..", "..", "valuesets"))
	require.NoError(t, err)
	return reg
}

// Every scenario fixture runs against the shipped value sets, checks its
// expectation clause, and byte-compares the verdict to its golden file.
func TestScenarios(t *testing.T) {
	reg := loadRegistry(t)

	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		s, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(s.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, s, reg))
		})
	}
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "compliant_recent_mammogram.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "compliant_recent_mammogram", s.Name)
	assert.Equal(t, "2025-12-31", s.PeriodEnd)
	assert.Equal(t, "pat-scn-a", s.Patient.ID)
	require.Len(t, s.Patient.Events, 1)
	assert.Equal(t, "77067", s.Patient.Events[0].Code)
	require.NotNil(t, s.Expect.NumeratorMet)
	assert.True(t, *s.Expect.NumeratorMet)
	require.NotNil(t, s.Expect.Evidence)
	assert.Equal(t, "2024-10-20|CPT|77067|Screening mammography, bilateral", *s.Expect.Evidence)
}

func TestLoadScenario_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o644))
		_, err := LoadScenario(path)
		assert.Error(t, err)
	})

	t.Run("missing name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "anon.yaml")
		require.NoError(t, os.WriteFile(path, []byte("period_end: \"2025-12-31\"\n"), 0o644))
		_, err := LoadScenario(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing name")
	})
}

func boolPtr(b bool) *bool { return &b }

func TestRun_ReportsExpectationFailures(t *testing.T) {
	reg := loadRegistry(t)
	s := &Scenario{
		Name:      "wrong_expectation",
		PeriodEnd: "2025-12-31",
		Patient: PatientFixture{
			ID:        "pat-1",
			BirthDate: "1962-03-10",
			Sex:       "F",
		},
		Expect: ExpectClause{
			NumeratorMet: boolPtr(true), // no mammogram on file
		},
	}

	res, err := Run(s, reg)
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0], "numerator_met")
}

func TestRun_UncheckedFieldsIgnored(t *testing.T) {
	reg := loadRegistry(t)
	s := &Scenario{
		Name:      "partial_expectation",
		PeriodEnd: "2025-12-31",
		Patient: PatientFixture{
			ID:        "pat-1",
			BirthDate: "1962-03-10",
			Sex:       "F",
		},
		Expect: ExpectClause{
			InitialPopulation: boolPtr(true),
			// Everything else deliberately unchecked.
		},
	}

	res, err := Run(s, reg)
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
}

func TestRun_MalformedFixture(t *testing.T) {
	reg := loadRegistry(t)
	s := &Scenario{
		Name:      "malformed",
		PeriodEnd: "2025-12-31",
		Patient: PatientFixture{
			ID:        "pat-1",
			BirthDate: "not-a-date",
			Sex:       "F",
		},
	}

	_, err := Run(s, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestRun_BadPeriod(t *testing.T) {
	reg := loadRegistry(t)
	s := &Scenario{
		Name:      "bad_period",
		PeriodEnd: "2025-99-99",
		Patient: PatientFixture{
			ID:        "pat-1",
			BirthDate: "1962-03-10",
			Sex:       "F",
		},
	}

	_, err := Run(s, reg)
	assert.Error(t, err)
}
