// Package harness runs declarative verdict scenarios against the
// engine and compares their canonical verdicts against golden files.
//
// Scenarios are the conformance suite for the measure's temporal
// semantics: boundary inclusivity, exclusion permanence, age boundaries,
// and evidence tie-breaking are all expressed as scenario fixtures
// rather than imperative test bodies.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clinbench/goldtruth/internal/cohort"
)

// Scenario defines one conformance scenario: a synthetic patient, a
// measurement period, and the expected verdict fields.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// PeriodEnd is the measurement-period end date (YYYY-MM-DD).
	PeriodEnd string `yaml:"period_end"`

	// Patient is the raw patient input. It goes through the same
	// construction boundary as production data.
	Patient PatientFixture `yaml:"patient"`

	// Expect lists the verdict fields to check. Omitted fields are not
	// checked.
	Expect ExpectClause `yaml:"expect"`
}

// PatientFixture is a scenario's raw patient declaration.
type PatientFixture struct {
	ID        string         `yaml:"id"`
	BirthDate string         `yaml:"birth_date"`
	Sex       string         `yaml:"sex"`
	Events    []EventFixture `yaml:"events,omitempty"`
}

// EventFixture is one raw event declaration, in scenario order.
type EventFixture struct {
	Date        string `yaml:"date"`
	System      string `yaml:"system"`
	Code        string `yaml:"code"`
	Description string `yaml:"description,omitempty"`
}

// ExpectClause holds the expected verdict fields. Pointer fields
// distinguish "expect false" from "not checked".
type ExpectClause struct {
	InitialPopulation *bool   `yaml:"initial_population,omitempty"`
	DenominatorMet    *bool   `yaml:"denominator_met,omitempty"`
	Excluded          *bool   `yaml:"excluded,omitempty"`
	NumeratorMet      *bool   `yaml:"numerator_met,omitempty"`
	Evidence          *string `yaml:"evidence,omitempty"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	return &s, nil
}

func (s *Scenario) patientInput() cohort.PatientInput {
	in := cohort.PatientInput{
		ID:        s.Patient.ID,
		BirthDate: s.Patient.BirthDate,
		Sex:       s.Patient.Sex,
	}
	for _, ev := range s.Patient.Events {
		in.Events = append(in.Events, cohort.EventInput{
			Date:        ev.Date,
			System:      ev.System,
			Code:        ev.Code,
			Description: ev.Description,
		})
	}
	return in
}
