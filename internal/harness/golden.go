package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/clinbench/goldtruth/internal/terminology"
)

// RunWithGolden executes a scenario and compares its canonical verdict
// JSON against the golden file testdata/golden/{scenario.Name}.golden.
//
// Golden files are the byte-level source of truth for verdict output.
// To regenerate after an intentional change:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot execute; expectation and golden
// mismatches fail t directly.
func RunWithGolden(t *testing.T, s *Scenario, reg *terminology.Registry) error {
	t.Helper()

	res, err := Run(s, reg)
	if err != nil {
		return err
	}
	for _, failure := range res.Failures {
		t.Errorf("scenario %s: %s", s.Name, failure)
	}

	verdictJSON, err := res.Verdict.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, verdictJSON)

	return nil
}
