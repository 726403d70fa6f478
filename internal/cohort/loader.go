// Package cohort loads patient cohorts from their external CSV
// serialization and drives the engine across them.
//
// Loading keeps rows as raw strings: parsing and validation happen at
// the patient construction boundary, per patient, so one malformed
// record becomes a recorded skip instead of halting the run.
package cohort

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/clinbench/goldtruth/internal/record"
)

// PatientInput is one patient's raw rows, untouched by validation.
type PatientInput struct {
	ID        string
	BirthDate string
	Sex       string
	Events    []EventInput
}

// EventInput is one raw event row, in original file order.
type EventInput struct {
	Date        string
	System      string
	Code        string
	Description string
}

// LoadPatients reads the patients and events CSVs and groups events by
// patient, preserving file order. Patients appear in the returned slice
// in patients-file order. Events referencing an unknown patient are an
// error: the two files are expected to be produced together.
func LoadPatients(patientsPath, eventsPath string) ([]PatientInput, error) {
	patients, index, err := readPatients(patientsPath)
	if err != nil {
		return nil, err
	}
	if err := readEvents(eventsPath, patients, index); err != nil {
		return nil, err
	}
	return patients, nil
}

func readPatients(path string) ([]PatientInput, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open patients file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	cols, err := headerIndex(r, path, "patient_id", "dob", "sex")
	if err != nil {
		return nil, nil, err
	}

	var patients []PatientInput
	index := make(map[string]int)
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		id := row[cols["patient_id"]]
		if _, dup := index[id]; dup {
			return nil, nil, fmt.Errorf("%s:%d: duplicate patient_id %q", path, line, id)
		}
		index[id] = len(patients)
		patients = append(patients, PatientInput{
			ID:        id,
			BirthDate: row[cols["dob"]],
			Sex:       row[cols["sex"]],
		})
	}
	return patients, index, nil
}

func readEvents(path string, patients []PatientInput, index map[string]int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	cols, err := headerIndex(r, path, "patient_id", "event_date", "system", "code", "description")
	if err != nil {
		return err
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		id := row[cols["patient_id"]]
		i, ok := index[id]
		if !ok {
			return fmt.Errorf("%s:%d: event for unknown patient %q", path, line, id)
		}
		patients[i].Events = append(patients[i].Events, EventInput{
			Date:        row[cols["event_date"]],
			System:      row[cols["system"]],
			Code:        row[cols["code"]],
			Description: row[cols["description"]],
		})
	}
	return nil
}

func headerIndex(r *csv.Reader, path string, required ...string) (map[string]int, error) {
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, name)
		}
	}
	return cols, nil
}

// Build parses and validates one raw input into the engine's immutable
// patient model. All failures are *record.MalformedRecordError: this is
// the single construction boundary between untyped external data and
// the evaluation core.
func Build(in PatientInput) (*record.Patient, error) {
	birth, err := record.ParseDate(in.BirthDate)
	if err != nil {
		return nil, &record.MalformedRecordError{PatientID: in.ID, Field: "date_of_birth", Message: err.Error()}
	}
	sex, err := record.ParseSex(in.Sex)
	if err != nil {
		return nil, &record.MalformedRecordError{PatientID: in.ID, Field: "sex", Message: err.Error()}
	}

	events := make([]record.Event, 0, len(in.Events))
	for i, ev := range in.Events {
		d, err := record.ParseDate(ev.Date)
		if err != nil {
			return nil, &record.MalformedRecordError{
				PatientID: in.ID,
				Field:     "event_date",
				Message:   fmt.Sprintf("event %d: %v", i, err),
			}
		}
		events = append(events, record.Event{
			Date:        d,
			System:      ev.System,
			Code:        ev.Code,
			Description: ev.Description,
		})
	}

	return record.NewPatient(in.ID, birth, sex, events)
}
