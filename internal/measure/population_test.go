package measure

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clinbench/goldtruth/internal/record"
)

func TestInInitialPopulation_AgeBoundaries(t *testing.T) {
	e := testEvaluator(t)
	period := testPeriod(t) // ends 2025-12-31

	tests := []struct {
		dob  record.Date
		age  int
		want bool
	}{
		{date(1976, time.January, 1), 49, false},
		{date(1975, time.December, 31), 50, true}, // 50th birthday on period end
		{date(1975, time.June, 15), 50, true},
		{date(1963, time.April, 2), 62, true},
		{date(1951, time.January, 1), 74, true},
		{date(1950, time.December, 31), 75, false}, // aged out the day of
		{date(1940, time.July, 7), 85, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("age %d", tt.age), func(t *testing.T) {
			p := newPatient(t, "pat-1", tt.dob, record.Female)
			assert.Equal(t, tt.age, p.AgeAt(period.End))
			assert.Equal(t, tt.want, e.InInitialPopulation(p, period))
		})
	}
}

func TestInInitialPopulation_SexMismatch(t *testing.T) {
	e := testEvaluator(t)
	period := testPeriod(t)

	p := newPatient(t, "pat-1", date(1963, time.April, 2), record.Male)
	assert.False(t, e.InInitialPopulation(p, period))
}

func TestInDenominator_FollowsInitialPopulation(t *testing.T) {
	e := testEvaluator(t)
	period := testPeriod(t)

	in := newPatient(t, "pat-1", date(1963, time.April, 2), record.Female)
	assert.True(t, e.InDenominator(in, period))

	out := newPatient(t, "pat-2", date(1990, time.April, 2), record.Female)
	assert.False(t, e.InDenominator(out, period))
}
