package record

import (
	"fmt"
	"iter"
)

// Sex is the administrative sex recorded for a patient.
type Sex string

const (
	Female Sex = "F"
	Male   Sex = "M"
)

// ParseSex normalizes an external sex field.
func ParseSex(s string) (Sex, error) {
	switch s {
	case "F", "female", "Female":
		return Female, nil
	case "M", "male", "Male":
		return Male, nil
	default:
		return "", fmt.Errorf("unknown sex %q", s)
	}
}

// MalformedRecordError is returned when a patient record cannot be
// normalized into the engine's model. It is a construction-time error:
// the evaluation pipeline never sees a patient that failed validation.
type MalformedRecordError struct {
	PatientID string
	Field     string
	Message   string
}

func (e *MalformedRecordError) Error() string {
	if e.PatientID != "" {
		return fmt.Sprintf("malformed patient record %s: %s: %s", e.PatientID, e.Field, e.Message)
	}
	return fmt.Sprintf("malformed patient record: %s: %s", e.Field, e.Message)
}

// Patient is the normalized, read-only view of one patient's demographics
// and clinical history. Construct only via NewPatient; the zero value is
// not usable.
//
// The event sequence is ordered by date. Order within a single date is
// the original record order and is significant for deterministic
// tie-breaking downstream.
type Patient struct {
	ID        string
	BirthDate Date
	Sex       Sex

	events []Event
}

// NewPatient validates and normalizes raw demographic fields and an event
// history into an immutable Patient. It fails fast with
// *MalformedRecordError on missing ID, missing birth date, unknown sex,
// an event with a zero date, or a non-chronological event sequence.
func NewPatient(id string, birthDate Date, sex Sex, events []Event) (*Patient, error) {
	if id == "" {
		return nil, &MalformedRecordError{Field: "patient_id", Message: "missing"}
	}
	if birthDate.IsZero() {
		return nil, &MalformedRecordError{PatientID: id, Field: "date_of_birth", Message: "missing"}
	}
	if sex != Female && sex != Male {
		return nil, &MalformedRecordError{PatientID: id, Field: "sex", Message: fmt.Sprintf("unknown value %q", string(sex))}
	}
	for i, ev := range events {
		if ev.Date.IsZero() {
			return nil, &MalformedRecordError{PatientID: id, Field: "event_date", Message: fmt.Sprintf("event %d has no date", i)}
		}
		if i > 0 && ev.Date.Before(events[i-1].Date) {
			return nil, &MalformedRecordError{
				PatientID: id,
				Field:     "events",
				Message:   fmt.Sprintf("not in chronological order at index %d (%s after %s)", i, ev.Date.ISO(), events[i-1].Date.ISO()),
			}
		}
	}

	// Copy to prevent external mutation of the history after construction.
	var evCopy []Event
	if len(events) > 0 {
		evCopy = make([]Event, len(events))
		copy(evCopy, events)
	}

	return &Patient{ID: id, BirthDate: birthDate, Sex: sex, events: evCopy}, nil
}

// AgeAt returns the patient's age in whole years on the given date,
// birthday-inclusive: a patient born 2000-06-15 is 24 on 2025-06-14 and
// 25 on 2025-06-15.
func (p *Patient) AgeAt(d Date) int {
	age := d.Year - p.BirthDate.Year
	if int(d.Month) < int(p.BirthDate.Month) ||
		(d.Month == p.BirthDate.Month && d.Day < p.BirthDate.Day) {
		age--
	}
	return age
}

// EventCount returns the number of events in the patient's history.
func (p *Patient) EventCount() int {
	return len(p.events)
}

// EventsMatching returns a lazy, order-preserving sequence of the events
// whose (system, code) is a member of the given set.
//
// No date filtering happens here: the full lifetime history is visible to
// the caller, and temporal semantics (windowed vs. ever-true) are the
// caller's responsibility. Laziness matters: if the caller never pulls
// the sequence, no set lookups are performed.
func (p *Patient) EventsMatching(set CodeMatcher) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range p.events {
			if set.Contains(ev.System, ev.Code) {
				if !yield(ev) {
					return
				}
			}
		}
	}
}
